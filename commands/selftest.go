package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/tpp-lora/lora-app-sheets/log"
	"github.com/tpp-lora/lora-app-sheets/logsheet"
	"github.com/tpp-lora/lora-app-sheets/webhook"
)

const (
	selfTestEvent  = "sheetTest1"
	selfTestData   = "Any Ki{nd & of te,st \r\n data \"can ] go: here\""
	selfTestCoreID = "1f0030001647ffffffffffff"
)

var SelfTestCmd = SelfTest{
	command: command{},
	dryrun:  false,
	webhook: "",
}

// SelfTest pushes a synthetic event with awkward payload text through the webhook POST
// handler and checks that the logged payload reads back unchanged.
type SelfTest struct {
	command
	dryrun  bool
	webhook string
}

func (cmd *SelfTest) Name() string {
	return "self-test"
}

func (cmd *SelfTest) Description() string {
	return "Logs a synthetic webhook event to verify the log worksheet setup"
}

func (cmd *SelfTest) Usage() string {
	return "[--dry-run] [--webhook <url>]"
}

func (cmd *SelfTest) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] self-test [options]\n", APP)
	fmt.Println()
	fmt.Println("  Logs a synthetic webhook event (with quotes, brackets and line breaks in the data) and verifies")
	fmt.Println("  that the logged payload reads back unchanged.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    lora-app-sheets self-test --dry-run`)
	fmt.Println(`    lora-app-sheets self-test --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"`)
	fmt.Println(`    lora-app-sheets self-test --webhook "http://127.0.0.1:8080/"`)
	fmt.Println()
}

func (cmd *SelfTest) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("self-test")

	flagset.BoolVar(&cmd.dryrun, "dry-run", cmd.dryrun, "Logs the event to an in-memory table instead of the worksheet")
	flagset.StringVar(&cmd.webhook, "webhook", cmd.webhook, "Posts the event to a running webhook server instead")

	return flagset
}

func (cmd *SelfTest) Execute(args ...any) error {
	conf, err := cmd.configure(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	params := selfTestParams(time.Now())

	if cmd.webhook != "" {
		return post(ctx, cmd.webhook, params)
	}

	location, err := conf.Location()
	if err != nil {
		return err
	}

	var table logsheet.Table
	var readback func() ([][]any, error)

	if cmd.dryrun {
		memtable := logsheet.NewMemTable("Timestamp", "Core ID", "Published At", "Data")

		table = memtable
		readback = func() ([][]any, error) {
			return memtable.Rows(), nil
		}
	} else {
		sheet, err := cmd.open(ctx, conf)
		if err != nil {
			return err
		}

		table = sheet
		readback = func() ([][]any, error) {
			values, err := sheet.Values(ctx)
			if err != nil {
				return nil, err
			}

			return values.Values, nil
		}
	}

	appender := logsheet.NewAppender(table, retention(conf), location)
	router := webhook.NewRouter(appender, conf.Path, conf.MaxBody, 0)

	if err := invoke(ctx, router, conf.Path, params); err != nil {
		return err
	}

	rows, err := readback()
	if err != nil {
		return err
	}

	return verify(rows, params)
}

func selfTestParams(now time.Time) url.Values {
	return url.Values{
		"event":        []string{selfTestEvent},
		"data":         []string{selfTestData},
		"coreid":       []string{selfTestCoreID},
		"published_at": []string{now.UTC().Format("2006-01-02T15:04:05.000Z")},
	}
}

// invoke feeds the event to the webhook POST handler in-process.
func invoke(ctx context.Context, handler http.Handler, path string, params url.Values) error {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, path, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}

	rq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, rq)

	if w.Code != http.StatusOK || w.Body.String() != "0" {
		return fmt.Errorf("webhook handler returned %v %q", w.Code, w.Body.String())
	}

	return nil
}

func post(ctx context.Context, uri string, params url.Values) error {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}

	rq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := http.DefaultClient.Do(rq)
	if err != nil {
		return fmt.Errorf("error posting self-test event to %v (%w)", uri, err)
	}

	defer response.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
	if response.StatusCode != http.StatusOK || string(body) != "0" {
		return fmt.Errorf("webhook server returned %v %q", response.StatusCode, string(body))
	}

	log.Infof("Posted self-test event to %v", uri)

	return nil
}

// verify finds the most recent row for the self-test event and checks the payload.
func verify(rows [][]any, params url.Values) error {
	coreid := params.Get("coreid")
	published := params.Get("published_at")
	data := params.Get("data")

	for i := len(rows) - 1; i > 0; i-- {
		row := rows[i]
		if len(row) < 4 || fmt.Sprintf("%v", row[1]) != coreid || fmt.Sprintf("%v", row[2]) != published {
			continue
		}

		if payload := fmt.Sprintf("%v", row[3]); payload != data {
			return fmt.Errorf("self-test payload corrupted - expected:%q, got:%q", data, payload)
		}

		log.Infof("Self-test event logged to row %v: %q", i+1, row)

		return nil
	}

	return fmt.Errorf("self-test event not found in log")
}
