// Package notification provides a unified interface for sending notices via
// pluggable delivery channels.
//
// The NotificationManager routes a NoticeType through a NotificationSystem to
// a registered Notifier, rendering the registered NoticeTemplate with the
// per-send data. An SMTP email notifier is included; tests use MockNotifier.
package notification
