package telegram

import (
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Requester issues raw Bot API calls. *tgbotapi.BotAPI satisfies it.
type Requester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// WebhookParams builds the setWebhook parameters. The secret is sent as
// secret_token so Telegram echoes it in the secret header of every update.
func WebhookParams(rawURL, secret string) (tgbotapi.Params, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("webhook url must be an absolute https url: %q", rawURL)
	}
	params := tgbotapi.Params{}
	params["url"] = u.String()
	params.AddNonEmpty("secret_token", secret)
	return params, nil
}

// RegisterWebhook points the bot at rawURL.
func RegisterWebhook(api Requester, rawURL, secret string) error {
	params, err := WebhookParams(rawURL, secret)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	return nil
}
