package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	bookstoretwin "storefront-e2e/lib/bookstore/twin"
	"storefront-e2e/lib/cipher"
	storefronttwin "storefront-e2e/lib/pages/twin"
	"storefront-e2e/lib/telemetry"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	twinStorefrontAddr string
	twinBookstoreAddr  string
	twinKey            string
)

func init() {
	twinCmd.Flags().StringVar(&twinStorefrontAddr, "storefront", "127.0.0.1:8081", "listen address of the storefront")
	twinCmd.Flags().StringVar(&twinBookstoreAddr, "bookstore", "127.0.0.1:8082", "listen address of the bookstore api")
	twinCmd.Flags().StringVarP(&twinKey, "key", "k", "", "when set, prints a .env with credentials encrypted with this passphrase")
	rootCmd.AddCommand(twinCmd)
}

func logRequests(log *telemetry.Log, name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug(name+" request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

func serve(ctx context.Context, log *telemetry.Log, name, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           logRequests(log, name, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			log.Warn("shutdown "+name, "err", err)
		}
	}()

	log.Info(name+" twin listening", "url", "http://"+addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func printEnv(cmd *cobra.Command) error {
	storefrontPassword, err := cipher.Encrypt(storefronttwin.DefaultAccount.Password, twinKey)
	if err != nil {
		return err
	}
	apiPassword, err := cipher.Encrypt("Secret@123", twinKey)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Base_URL=http://%s/\n", twinStorefrontAddr)
	fmt.Fprintf(out, "Default_Username=%s\n", storefronttwin.DefaultAccount.Username)
	fmt.Fprintf(out, "Default_Password=%s\n", storefrontPassword)
	fmt.Fprintf(out, "PageTitleMyAccountPage=%s\n", storefronttwin.AccountTitle)
	fmt.Fprintf(out, "API_BASE_URL=http://%s\n", twinBookstoreAddr)
	fmt.Fprintf(out, "API_Password=%s\n", apiPassword)
	fmt.Fprintf(out, "ENCRYPTION_KEY=%s\n", twinKey)
	return nil
}

var twinCmd = &cobra.Command{
	Use:   "twin [--storefront <addr>] [--bookstore <addr>] [--key <passphrase>]",
	Short: "Serves in-memory stand ins of the storefront and the bookstore api for local runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if twinKey != "" {
			err := printEnv(cmd)
			if err != nil {
				return err
			}
		}

		log, err := telemetry.OpenLog(telemetry.LogOptions{
			Dir:  filepath.Join("test-results", "Logs"),
			File: "twin.log",
		})
		if err != nil {
			return err
		}
		defer log.Close()

		group, ctx := errgroup.WithContext(cmd.Context())
		group.Go(func() error {
			return serve(ctx, log, "storefront", twinStorefrontAddr, storefronttwin.New().Handler())
		})
		group.Go(func() error {
			return serve(ctx, log, "bookstore", twinBookstoreAddr, bookstoretwin.New().Handler())
		})
		return group.Wait()
	},
}
