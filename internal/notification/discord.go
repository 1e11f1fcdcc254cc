package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/forest-guardian/landcube/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

const (
	colorRed   = 16711680
	colorGreen = 65280
)

func postEmbed(webhookURL string, embed DiscordEmbed) error {
	if webhookURL == "" {
		return fmt.Errorf("no discord webhook configured")
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}

func SendDiscordErrorNotification(errorMessage string) error {
	return postEmbed(properties.DiscordErrorNotificationUrl(), DiscordEmbed{
		Title:       "🚨 Error Notification",
		Description: fmt.Sprintf("A job fell over:\n\n%s", errorMessage),
		Color:       colorRed,
	})
}

func SendDiscordSuccessNotification(successMessage string) error {
	return postEmbed(properties.DiscordSuccessNotificationUrl(), DiscordEmbed{
		Title:       "✅ Success Notification",
		Description: successMessage,
		Color:       colorGreen,
	})
}

// NotifyJob reports how a long-running job ended. Failures go to the error
// webhook, everything else to the success one.
func NotifyJob(job string, elapsed time.Duration, jobErr error) error {
	if jobErr != nil {
		return SendDiscordErrorNotification(
			fmt.Sprintf("%s failed after %s: %v", job, elapsed.Round(time.Second), jobErr))
	}
	return SendDiscordSuccessNotification(
		fmt.Sprintf("%s finished in %s", job, elapsed.Round(time.Second)))
}
