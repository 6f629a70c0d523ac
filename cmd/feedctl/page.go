package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reelfeed/reelfeed-server/internal/feed"
)

func newPageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "page <provider> [cursor]",
		Short: "Fetch one page of a provider's listing",
		Long:  "Fetch one page. The cursor is a page number or an offset depending on the provider.",
		Example: `  feedctl page dramabox 2
  feedctl page melolo 20 --local`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			value := -1
			if len(args) == 2 {
				v, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("cursor %q is not a number", args[1])
				}
				value = v
			}
			return runPage(args[0], value)
		},
	}
}

func runPage(name string, value int) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	infos, err := b.Providers(ctx)
	if err != nil {
		return fmt.Errorf("list providers: %w", err)
	}
	qs, err := queries(infos)
	if err != nil {
		return err
	}
	q, ok := findQuery(qs, name)
	if !ok {
		return fmt.Errorf("unknown provider %q", name)
	}

	cursor := feed.Initial(q.Kind)
	if value >= 0 {
		cursor = feed.FromParam(q.Kind, value)
	}

	page, err := b.FetchPage(ctx, q.Provider, cursor)
	if err != nil {
		return err
	}

	fmt.Println(styleHeader.Render(fmt.Sprintf("%s %s", q.Provider, cursor.Key())))
	for _, it := range page.Items {
		fmt.Println("  " + renderItem(it))
	}
	if page.Next != nil {
		fmt.Println(styleInfo.Render("next: " + page.Next.Key()))
	} else {
		fmt.Println(styleDim.Render("end of list"))
	}
	return nil
}
