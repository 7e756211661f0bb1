package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/blackhole/internal/domain/entities"
)

func newPostCommand(client func() *Client) *cobra.Command {
	var (
		community  string
		authorID   string
		name       string
		color      string
		confession bool
		filter     string
		replyTo    string
	)

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Post a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var msg entities.Message
			err := client().post("/api/messages", map[string]interface{}{
				"community":       community,
				"content":         args[0],
				"author_id":       authorID,
				"display_name":    name,
				"display_color":   color,
				"confession_mode": confession,
				"active_filter":   filter,
				"reply_to_id":     replyTo,
			}, &msg)
			if err != nil {
				return err
			}
			fmt.Printf("posted %s into %s/%s\n", msg.ID, msg.Community, msg.GroupName)
			return nil
		},
	}

	cmd.Flags().StringVar(&community, "community", "campus", "Community to post into")
	cmd.Flags().StringVar(&authorID, "author", "", "Author user ID")
	cmd.Flags().StringVar(&name, "name", "", "Anonymous display name")
	cmd.Flags().StringVar(&color, "color", "", "Anonymous display color")
	cmd.Flags().BoolVar(&confession, "confession", false, "Post as a confession")
	cmd.Flags().StringVar(&filter, "filter", "", "Active view filter, e.g. #exams")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "Message ID being replied to")
	cmd.MarkFlagRequired("author")

	return cmd
}

func newFeedCommand(client func() *Client) *cobra.Command {
	var (
		community string
		filter    string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the message feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("community", community)
			if filter != "" {
				query.Set("filter", filter)
			}
			query.Set("limit", strconv.Itoa(limit))

			var msgs []entities.Message
			if err := client().get("/api/messages", query, &msgs); err != nil {
				return err
			}
			for _, msg := range msgs {
				printMessage(&msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&community, "community", "campus", "Community to read")
	cmd.Flags().StringVar(&filter, "filter", "", "View filter: all, confession, or #tag")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum messages to fetch")

	return cmd
}

func newGroupsCommand(client func() *Client) *cobra.Command {
	var (
		community string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List trending hashtag groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("community", community)
			query.Set("limit", strconv.Itoa(limit))

			var groups []entities.HashtagGroup
			if err := client().get("/api/groups", query, &groups); err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Printf("#%-20s %5d messages  last active %s\n",
					g.Tag, g.MessageCount, g.LastActivityAt.Local().Format(time.RFC822))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&community, "community", "campus", "Community to read")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum groups to list")

	return cmd
}

func newTopCommand(client func() *Client) *cobra.Command {
	var (
		community string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most-reacted messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("community", community)
			query.Set("limit", strconv.Itoa(limit))

			var msgs []entities.Message
			if err := client().get("/api/messages/top", query, &msgs); err != nil {
				return err
			}
			for i, msg := range msgs {
				fmt.Printf("%d. ", i+1)
				printMessage(&msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&community, "community", "campus", "Community to read")
	cmd.Flags().IntVar(&limit, "limit", 3, "How many messages to show")

	return cmd
}

func newPurgeCommand(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Show the countdown to the next global purge",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				NextBoundary     time.Time `json:"next_boundary"`
				SecondsRemaining int64     `json:"seconds_remaining"`
			}
			if err := client().get("/api/purge", nil, &resp); err != nil {
				return err
			}
			remaining := time.Duration(resp.SecondsRemaining) * time.Second
			fmt.Printf("next purge at %s (in %s)\n",
				resp.NextBoundary.Local().Format(time.RFC822), remaining)
			return nil
		},
	}
}

func newIdentityCommand(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Mint a fresh anonymous identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var identity entities.Identity
			if err := client().post("/api/identity", map[string]interface{}{}, &identity); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", identity.DisplayName, identity.DisplayColor)
			return nil
		},
	}
}

func printMessage(msg *entities.Message) {
	name := msg.DisplayName
	if msg.Kind == entities.KindConfession {
		name = "anonymous"
	}
	fmt.Printf("[%s] %s: %s", msg.CreatedAt.Local().Format("15:04"), name, msg.Content)
	if total := msg.TotalReactions(); total > 0 {
		fmt.Printf("  (+%d)", total)
	}
	fmt.Println()
}
