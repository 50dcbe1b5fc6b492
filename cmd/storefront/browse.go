package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidigo/storefront/categories"
	"github.com/kidigo/storefront/events"
	"github.com/kidigo/storefront/internal/utils"
	"github.com/kidigo/storefront/notify"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			filters := eventFilters(cmd)
			page, err := a.events.List(cmd.Context(), filters)
			if err != nil {
				return err
			}

			for _, event := range page.Events {
				printEvent(event)
			}
			if page.Pagination.TotalPages > 1 {
				fmt.Printf("page %d of %d (%d events)\n",
					page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.TotalCount)
			}
			return nil
		},
	}

	cmd.Flags().String("city", "", "Filter by city ID")
	cmd.Flags().String("category", "", "Filter by category ID")
	cmd.Flags().String("organizer", "", "Filter by organizer ID")
	cmd.Flags().String("date", "", "Date filter: Today, ThisWeekend or YYYY-MM-DD")
	cmd.Flags().String("search", "", "Free-text search")
	cmd.Flags().Int("min-age", -1, "Minimum age")
	cmd.Flags().Int("max-age", -1, "Maximum age")
	cmd.Flags().Int("page", 0, "Page number")
	cmd.Flags().Int("limit", 0, "Page size")
	return cmd
}

func eventFilters(cmd *cobra.Command) events.Filters {
	filters := events.Filters{}
	filters.CityID, _ = cmd.Flags().GetString("city")
	filters.CategoryID, _ = cmd.Flags().GetString("category")
	filters.OrganizerID, _ = cmd.Flags().GetString("organizer")
	filters.DateFilter, _ = cmd.Flags().GetString("date")
	filters.Search, _ = cmd.Flags().GetString("search")
	filters.Page, _ = cmd.Flags().GetInt("page")
	filters.Limit, _ = cmd.Flags().GetInt("limit")
	if minAge, _ := cmd.Flags().GetInt("min-age"); minAge >= 0 {
		filters.MinAge = utils.Ptr(minAge)
	}
	if maxAge, _ := cmd.Flags().GetInt("max-age"); maxAge >= 0 {
		filters.MaxAge = utils.Ptr(maxAge)
	}
	return filters
}

func printEvent(event events.Event) {
	price := "free"
	if !event.IsFree() {
		price = event.Price.StringFixed(2)
	}
	fmt.Printf("%s  %-40s  %s\n", event.ID, event.Title, price)
}

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List event categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			search, _ := cmd.Flags().GetString("search")
			list, err := a.categories.List(cmd.Context(), categories.Filters{Search: search})
			if err != nil {
				return err
			}
			for _, category := range list {
				fmt.Printf("%s  %s\n", category.ID, category.Name)
			}
			return nil
		},
	}
	cmd.Flags().String("search", "", "Filter categories by name")
	return cmd
}

func newBookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Manage saved events",
	}
	cmd.AddCommand(newBookmarksListCmd())
	cmd.AddCommand(newBookmarksToggleCmd())
	return cmd
}

func newBookmarksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.bookmarks.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(saved) == 0 {
				fmt.Println("No saved events")
				return nil
			}
			for _, event := range saved {
				printEvent(event)
			}
			return nil
		},
	}
}

func newBookmarksToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <event-id>",
		Short: "Bookmark an event, or remove an existing bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.saved.Refresh(cmd.Context()); err != nil {
				return err
			}

			eventID := args[0]
			wasSaved := a.saved.Contains(eventID)
			messages := notify.Messages{Loading: "Saving...", Success: "Event saved"}
			if wasSaved {
				messages = notify.Messages{Loading: "Removing...", Success: "Bookmark removed"}
			}

			err = a.relay.Run(cmd.Context(), messages, func(ctx context.Context) error {
				return a.saved.Toggle(ctx, eventID)
			})
			return err
		},
	}
}
