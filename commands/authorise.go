package commands

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tpp-lora/lora-app-sheets/commands/html"
	"github.com/tpp-lora/lora-app-sheets/log"
)

var AuthoriseCmd = Authorise{
	command: command{},
	bind:    "127.0.0.1:8081",
}

type Authorise struct {
	command
	bind string
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises lora-app-sheets to access a Google Sheets worksheet"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] authorise [options]\n", APP)
	fmt.Println()
	fmt.Println("  Authorises lora-app-sheets to access a Google Sheets worksheet and stores the OAuth2 token")
	fmt.Println("  in the tokens directory. Not required for service account credentials.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    lora-app-sheets authorise --credentials "credentials.json"`)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file. Defaults to the configuration file setting")
	flagset.StringVar(&cmd.tokens, "tokens", cmd.tokens, "Directory for the authorisation tokens. Defaults to the configuration file setting")
	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "Local address for the OAuth2 redirect")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	conf, err := cmd.configure(args)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cmd.bind)
	if err != nil {
		return fmt.Errorf("unable to listen on %v (%w)", cmd.bind, err)
	}

	token, err := authenticate(conf.Credentials, SHEETS, listener)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	} else if token == nil {
		return nil
	}

	file := tokenFile(conf.Credentials, SHEETS, conf.Tokens)
	if err := saveToken(file, token); err != nil {
		return err
	}

	log.Infof("Saved authorisation token to %v", file)

	return nil
}

// authenticate runs the OAuth2 consent flow with the redirect served on the listener.
// Returns a nil token if the flow was cancelled.
func authenticate(credentials, scope string, listener net.Listener) (*oauth2.Token, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(b, scope)
	if err != nil {
		return nil, err
	}

	host := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	state := uuid.NewString()

	config.RedirectURL = host + "/"

	authorised := make(chan string, 1)
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		code := rq.FormValue("code")

		if rq.FormValue("state") != state || code == "" {
			http.Redirect(w, rq, "/auth.html", http.StatusFound)
			return
		}

		w.Write([]byte("lora-app-sheets authorised - you can close this window"))

		select {
		case authorised <- code:
		default:
		}
	})

	mux.HandleFunc("/auth.html", func(w http.ResponseWriter, rq *http.Request) {
		page := map[string]any{
			"sheets": config.AuthCodeURL(state, oauth2.AccessTypeOffline),
		}

		t, err := template.New("auth.html").ParseFS(html.HTML, "auth.html")
		if err != nil {
			http.Error(w, "Internal error formatting page", http.StatusInternalServerError)
			return
		}

		var b bytes.Buffer
		if err := t.Execute(&b, page); err != nil {
			http.Error(w, "Error formatting page", http.StatusInternalServerError)
			return
		}

		w.Write(b.Bytes())
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("%v", err)
		}
	}()

	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Warnf("%v", err)
		}
	}()

	// ... CTRL-C handler
	interrupt := make(chan os.Signal, 1)

	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	// ... open authorisation page in browser
	page := host + "/auth.html"
	if err := browse(page); err != nil {
		fmt.Printf("Could not open authorisation page in your browser - please open %v manually\n", page)
	}

	// ... wait for authorisation
	select {
	case <-interrupt:
		fmt.Printf("\n.. cancelled\n\n")
		return nil, nil

	case code := <-authorised:
		return config.Exchange(context.Background(), code)
	}
}

func browse(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()

	default:
		return exec.Command("xdg-open", url).Start()
	}
}
