package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/looplj/authhub/conf"
	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/catalog"
	"github.com/looplj/authhub/llm/httpclient"
	"github.com/looplj/authhub/llm/oauth"
	"github.com/looplj/authhub/llm/provider"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	config   conf.Config
	registry *provider.Registry
	manager  *oauth.Manager
	fetcher  *catalog.Fetcher
}

func newApp() (*app, error) {
	config, err := conf.Load()
	if err != nil {
		return nil, err
	}

	log.Setup(config.Log)

	client := httpclient.NewHttpClientWithClient(&http.Client{
		Timeout: cast.ToDuration(config.HTTP.Timeout),
	})

	registry := provider.NewRegistry()
	registry.Apply(config.Providers)

	manager := oauth.NewManager(oauth.NewStore(config.Store.Path), client, registry)

	return &app{
		config:   config,
		registry: registry,
		manager:  manager,
		fetcher:  catalog.NewFetcher(manager, client),
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "authhub",
		Short:         "OAuth credential broker for LLM providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newListCmd(),
		newStatusCmd(),
		newModelsCmd(),
	)

	return root
}

func newLoginCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Authenticate a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			name := args[0]

			if apiKey != "" {
				if err := a.manager.SetAPIKey(ctx, name, apiKey); err != nil {
					return err
				}

				fmt.Printf("Stored API key for %s.\n", name)

				return nil
			}

			cfg, ok := a.registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown provider %q, known providers: %v", name, a.registry.Names())
			}

			if cfg.AuthorizeURL != "" {
				login, err := a.manager.StartAuthCodeLogin(ctx, name)
				if err != nil {
					return err
				}

				fmt.Printf("Open the following URL in your browser:\n\n  %s\n\nWaiting for the callback...\n", login.AuthURL)

				cred, err := login.Await(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Logged in to %s (expires %s).\n", name, cred.ExpiresAt().Format("2006-01-02 15:04"))

				return nil
			}

			login, err := a.manager.StartDeviceLogin(ctx, name)
			if err != nil {
				return err
			}

			fmt.Printf("Visit %s and enter the code %s\n\nWaiting for approval...\n", login.VerificationURI, login.UserCode)

			cred, err := login.Await(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in to %s (expires %s).\n", name, cred.ExpiresAt().Format("2006-01-02 15:04"))

			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "store a static API key instead of running an OAuth flow")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <provider>",
		Short: "Remove a provider's stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			removed, err := a.manager.Logout(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !removed {
				fmt.Printf("No credential stored for %s.\n", args[0])

				return nil
			}

			fmt.Printf("Logged out of %s.\n", args[0])

			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			entries := a.manager.List()
			if len(entries) == 0 {
				fmt.Println("No credentials stored.")

				return nil
			}

			for _, entry := range entries {
				fmt.Println(describeCredential(entry))
			}

			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <provider>",
		Short: "Show one provider's credential status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			cred, ok := a.manager.Store().Get(args[0])
			if !ok {
				fmt.Printf("%s: not authenticated\n", args[0])

				return nil
			}

			fmt.Println(describeCredential(oauth.Entry{Provider: args[0], Credential: cred}))

			return nil
		},
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List available models",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if len(args) == 1 {
				models, err := a.fetcher.Fetch(ctx, args[0])
				if err != nil {
					return err
				}

				printModels(args[0], models)

				return nil
			}

			for provider, models := range a.fetcher.FetchAll(ctx) {
				printModels(provider, models)
			}

			return nil
		},
	}
}

func printModels(provider string, models []catalog.Model) {
	fmt.Printf("%s:\n", provider)

	for _, model := range models {
		if model.DefaultEffort != "" {
			fmt.Printf("  %s (efforts: %v, default %s)\n", model.ID, model.ReasoningEfforts, model.DefaultEffort)

			continue
		}

		fmt.Printf("  %s\n", model.ID)
	}
}

func describeCredential(entry oauth.Entry) string {
	if entry.Credential.Type == oauth.CredentialTypeAPIKey {
		return fmt.Sprintf("%s: api key", entry.Provider)
	}

	expiresAt := entry.Credential.ExpiresAt()
	if expiresAt.IsZero() {
		return fmt.Sprintf("%s: oauth, no expiry recorded", entry.Provider)
	}

	state := "valid"
	if entry.Credential.IsExpired(time.Now()) {
		state = "expired"
	}

	return fmt.Sprintf("%s: oauth, %s, expires %s", entry.Provider, state, expiresAt.Format("2006-01-02 15:04"))
}
