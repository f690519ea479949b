package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// Notifier delivers a standup digest to a chat channel.
type Notifier interface {
	PostStandup(ctx context.Context, digest *StandupDigest) error
}

type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(cfg SlackConfig) *SlackNotifier {
	return &SlackNotifier{webhookURL: cfg.WebhookURL}
}

func (n *SlackNotifier) PostStandup(ctx context.Context, digest *StandupDigest) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	msg := &slack.WebhookMessage{
		Text:   fmt.Sprintf("Standup — %s", digest.Date),
		Blocks: &slack.Blocks{BlockSet: standupBlocks(digest)},
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	return nil
}

func standupBlocks(digest *StandupDigest) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("🗓 Standup — %s", digest.Date), false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Yesterday (%s)*\n%s", digest.Previous, digestLines(digest.Yesterday, "_nothing recorded_")), false, false),
			nil, nil,
		),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Today*\n%s", digestLines(digest.Today, "_nothing captured yet_")), false, false),
			nil, nil,
		),
	}

	if len(digest.Warnings) > 0 {
		blocks = append(blocks, slack.NewContextBlock(
			"",
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("⚠️ _%d journal warnings_", len(digest.Warnings)), false, false),
		))
	}
	return blocks
}

func digestLines(projects []ProjectDigest, empty string) string {
	if len(projects) == 0 {
		return empty
	}
	var sb strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&sb, "*%s*\n", p.ProjectID)
		for _, group := range [][]string{p.Commits, p.PRs, p.Tickets, p.WIP} {
			for _, line := range group {
				fmt.Fprintf(&sb, "• %s\n", line)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
