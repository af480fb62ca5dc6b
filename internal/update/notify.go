package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

const maxNotifications = 40

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

// notifyDesktop records the notification and also hands it to the desktop
// notifier when that is turned on.
func (m *Model) notifyDesktop(title, body, level string) {
	m.notify(title, body, level)
	if !m.cfg.DesktopNotify || m.notifier == nil || len(m.Notifications) == 0 {
		return
	}
	if err := m.notifier.Send(m.Notifications[len(m.Notifications)-1]); err != nil {
		m.logger.Debug("desktop notification failed", "err", err)
	}
}
