package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the providers and how they paginate",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runProviders()
		},
	}
}

func runProviders() error {
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

	fmt.Println(styleHeader.Render("Providers"))
	for _, info := range infos {
		fmt.Printf("  %-12s %-18s %s\n", info.Name, info.Kind,
			styleDim.Render(fmt.Sprintf("%s=%d", info.Param, info.Start)))
	}
	return nil
}
