package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"storefront-e2e/lib/config"
	"storefront-e2e/lib/report"
	"storefront-e2e/lib/telemetry"
	"storefront-e2e/test/bookstore"
	"storefront-e2e/test/storefront"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

var (
	runPattern string
	runTimeout time.Duration
	runNoMail  bool
	runNoColor bool
)

func init() {
	runCmd.Flags().StringVar(&runPattern, "run", "", "only run scenarios matching this regexp, as go test -run")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the whole run after this long, 0 means no limit")
	runCmd.Flags().BoolVar(&runNoMail, "no-mail", false, "do not mail the report even when smtp is configured")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", os.Getenv("NO_COLOR") != "", "print the summary without colors")
	rootCmd.AddCommand(runCmd)
}

type suite interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
	Tests() []testing.InternalTest
}

type namedSuite struct {
	name  string
	suite suite
}

func selectSuites(which string, cfg config.Config, log *telemetry.Log, rep *report.Report) ([]namedSuite, error) {
	all := []namedSuite{
		{storefront.Name, storefront.New(cfg, log.Scoped("suite", storefront.Name), rep)},
		{bookstore.Name, bookstore.New(cfg, log.Scoped("suite", bookstore.Name), rep)},
	}
	if which == "all" {
		return all, nil
	}
	for _, s := range all {
		if s.name == which {
			return []namedSuite{s}, nil
		}
	}
	return nil, fmt.Errorf("unknown suite %q, expected storefront, bookstore or all", which)
}

// runID is sortable by start time and unique across machines.
func runID(started time.Time) (string, error) {
	suffix, err := random.String(6)
	if err != nil {
		return "", err
	}
	return started.UTC().Format("20060102-150405") + "-" + suffix, nil
}

type publisher struct {
	cfg  config.Config
	log  *telemetry.Log
	api  telemetry.API
	rep  *report.Report
	out  io.Writer
	mail bool
}

// publish writes the html and json reports, prints the summary table,
// records the run in the history database and mails the report. Failures
// are reported but never change the outcome of the run.
func (p publisher) publish(ctx context.Context) {
	resultsDir := p.cfg.Resolve(p.cfg.ResultsDir)
	results := p.rep.Results()
	summary := report.Summarize(results)
	p.api.ReportCount("passed", int64(summary.Passed))
	p.api.ReportCount("failed", int64(summary.Failed))
	p.api.ReportCount("skipped", int64(summary.Skipped))

	fmt.Fprintln(p.out)
	report.WriteSummary(p.out, results, !runNoColor)

	htmlPath, err := p.rep.WriteHTML(resultsDir)
	if err != nil {
		p.api.ReportBroken("report.html", err)
	} else {
		p.log.Info("html report written", "path", htmlPath)
	}
	jsonPath, err := p.rep.WriteJSON(resultsDir)
	if err != nil {
		p.api.ReportBroken("report.json", err)
	} else {
		p.log.Info("json report written", "path", jsonPath)
	}

	err = p.record(ctx, summary, results)
	if err != nil {
		p.api.ReportBroken("history", err)
	}

	if !p.mail || htmlPath == "" {
		return
	}
	err = p.sendMail(ctx, htmlPath, jsonPath)
	if errors.Is(err, report.ErrMailDisabled) {
		p.log.Debug("report mailing is not configured")
		return
	}
	if err != nil {
		p.api.ReportWarning("mail", err)
		return
	}
	p.log.Info("report mailed", "to", p.cfg.Report.Email.To)
}

func (p publisher) record(ctx context.Context, summary report.Summary, results []report.Result) error {
	history, err := report.OpenHistory(p.cfg.Resolve(p.cfg.Report.HistoryDB))
	if err != nil {
		return err
	}
	defer history.Close()

	id, err := runID(p.rep.Started)
	if err != nil {
		return err
	}
	err = history.Record(ctx, report.Run{
		ID:      id,
		Name:    p.rep.Name,
		Started: p.rep.Started,
		Summary: summary,
	}, results)
	if err != nil {
		return err
	}
	p.log.Info("run recorded", "id", id)
	return nil
}

func (p publisher) sendMail(ctx context.Context, htmlPath, jsonPath string) error {
	smtp := p.cfg.Report.Email
	password, err := p.cfg.SmtpPassword()
	if err != nil {
		return fmt.Errorf("decrypt smtp password: %w", err)
	}
	mailer, err := report.NewMailer(report.MailerConfig{
		Server:   smtp.Server,
		Port:     smtp.Port,
		From:     smtp.From,
		Password: password,
		To:       smtp.To,
	})
	if err != nil {
		return err
	}
	attachments := []string{}
	if jsonPath != "" {
		attachments = append(attachments, jsonPath)
	}
	if path := p.log.Path(); path != "" {
		attachments = append(attachments, path)
	}
	return mailer.Send(ctx, p.rep, htmlPath, attachments...)
}

// matcher selects tests the way -test.run does, the teardown and report
// tests always run.
func matcher(always map[string]bool) func(pat, str string) (bool, error) {
	return func(pat, str string) (bool, error) {
		if always[str] || pat == "" {
			return true, nil
		}
		return regexp.MatchString(pat, str)
	}
}

var runCmd = &cobra.Command{
	Use:       "run [storefront|bookstore|all]",
	Short:     "Runs the suites, writes the reports and records the run.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{storefront.Name, bookstore.Name, "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "all"
		if len(args) == 1 {
			which = args[0]
		}
		if runPattern != "" {
			_, err := regexp.Compile(runPattern)
			if err != nil {
				return fmt.Errorf("invalid --run: %w", err)
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}

		log, err := telemetry.OpenLog(telemetry.LogOptions{
			Dir: filepath.Join(cfg.Resolve(cfg.ResultsDir), "Logs"),
		})
		if err != nil {
			return err
		}
		tel, err := telemetry.Setup(ctx, "storefront-e2e", cfg.Telemetry)
		if err != nil {
			log.Close()
			return err
		}
		telemetry.InstrumentPerfStats(ctx, log)
		api := telemetry.NewScopedAPI("e2e.run", telemetry.SlogAPI{Logger: log.Logger})

		rep := report.New()
		p := publisher{cfg: cfg, log: log, api: api, rep: rep, out: cmd.OutOrStdout(), mail: !runNoMail}
		finish := func() {
			p.publish(context.WithoutCancel(ctx))
			err := tel.Shutdown(context.WithoutCancel(ctx))
			if err != nil {
				log.Warn("telemetry shutdown", "err", err)
			}
			log.Close()
		}

		suites, err := selectSuites(which, cfg, log, rep)
		if err != nil {
			finish()
			return err
		}

		// every suite is set up before anything runs, a failed setup aborts
		// the run after tearing down the suites that were ready
		ready := []namedSuite{}
		for _, s := range suites {
			err = s.suite.Setup(ctx)
			if err != nil {
				api.ReportBroken("setup", s.name, err)
				for _, r := range ready {
					_ = r.suite.Teardown(context.WithoutCancel(ctx))
				}
				_ = s.suite.Teardown(context.WithoutCancel(ctx))
				finish()
				return fmt.Errorf("%s setup: %w", s.name, err)
			}
			ready = append(ready, s)
		}

		tests := []testing.InternalTest{}
		always := map[string]bool{}
		for _, s := range ready {
			s := s
			for _, test := range s.suite.Tests() {
				tests = append(tests, testing.InternalTest{Name: s.name + "_" + test.Name, F: test.F})
			}
			name := s.name + "_Teardown"
			always[name] = true
			tests = append(tests, testing.InternalTest{Name: name, F: func(t *testing.T) {
				err := s.suite.Teardown(context.WithoutCancel(ctx))
				if err != nil {
					api.ReportWarning("teardown", s.name, err)
					t.Log(err)
				}
			}})
		}
		always["Report"] = true
		tests = append(tests, testing.InternalTest{Name: "Report", F: func(t *testing.T) {
			finish()
		}})

		testing.Init()
		err = flag.CommandLine.Parse([]string{"-test.v=true"})
		if err != nil {
			return err
		}
		if runPattern != "" {
			err = flag.Set("test.run", runPattern)
			if err != nil {
				return err
			}
		}
		// exits the process with the test status
		testing.Main(matcher(always), tests, nil, nil)
		return nil
	},
}
