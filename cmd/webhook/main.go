// Команда webhook регистрирует, показывает и удаляет вебхук бота
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Типы обновлений, которые нужны боту
var allowedUpdates = []string{"message", "callback_query", "chat_join_request"}

type webhookAPI interface {
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	GetWebhookInfo(ctx context.Context) (*models.WebhookInfo, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

type options struct {
	token       string
	url         string
	secret      string
	dropPending bool
}

func main() {
	_ = godotenv.Load(".env")

	if err := run(os.Args[1:], os.Stdout, newAPI); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newAPI(token string) (webhookAPI, error) {
	return bot.New(token, bot.WithSkipGetMe())
}

func run(args []string, out io.Writer, connect func(token string) (webhookAPI, error)) error {
	var opts options

	flagSet := pflag.NewFlagSet("webhook", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&opts.token, "token", os.Getenv("TELEGRAM_TOKEN"), "bot token (default: $TELEGRAM_TOKEN)")
	flagSet.StringVar(&opts.url, "url", defaultURL(), "webhook URL (default: $PUBLIC_BASE_URL + $WEBHOOK_PATH)")
	flagSet.StringVar(&opts.secret, "secret", os.Getenv("WEBHOOK_SECRET_TOKEN"), "secret token checked on every update")
	flagSet.BoolVar(&opts.dropPending, "drop-pending", false, "drop updates queued while the webhook was not set")
	flagSet.Usage = func() {
		fmt.Fprintln(out, "usage: webhook [flags] set|info|delete")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one subcommand, got %d", len(rest))
	}
	if opts.token == "" {
		return fmt.Errorf("--token or TELEGRAM_TOKEN is required")
	}

	api, err := connect(opts.token)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch rest[0] {
	case "set":
		return setWebhook(ctx, api, opts, out)
	case "info":
		return printInfo(ctx, api, out)
	case "delete":
		if _, err := api.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: opts.dropPending}); err != nil {
			return fmt.Errorf("delete webhook: %w", err)
		}
		fmt.Fprintln(out, "✅ Webhook deleted")
		return nil
	default:
		return fmt.Errorf("unknown subcommand %q", rest[0])
	}
}

func setWebhook(ctx context.Context, api webhookAPI, opts options, out io.Writer) error {
	if !strings.HasPrefix(opts.url, "https://") {
		return fmt.Errorf("webhook url must be https, got %q", opts.url)
	}

	_, err := api.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:                opts.url,
		SecretToken:        opts.secret,
		AllowedUpdates:     allowedUpdates,
		DropPendingUpdates: opts.dropPending,
	})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	fmt.Fprintf(out, "✅ Webhook set to %s\n", opts.url)
	return nil
}

func printInfo(ctx context.Context, api webhookAPI, out io.Writer) error {
	info, err := api.GetWebhookInfo(ctx)
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}

	url := info.URL
	if url == "" {
		url = "(not set)"
	}
	fmt.Fprintf(out, "URL: %s\n", url)
	fmt.Fprintf(out, "Pending updates: %d\n", info.PendingUpdateCount)
	if info.LastErrorMessage != "" {
		fmt.Fprintf(out, "Last error: %s\n", info.LastErrorMessage)
	}
	return nil
}

func defaultURL() string {
	base := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if base == "" {
		return ""
	}
	path := os.Getenv("WEBHOOK_PATH")
	if path == "" {
		path = "/api/bot"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
