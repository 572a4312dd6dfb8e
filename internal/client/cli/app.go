package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/config"
	"github.com/dmitrijs2005/flipbook/internal/client/controllers"
	"github.com/dmitrijs2005/flipbook/internal/client/fullscreen"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/client/pageflip"
	"github.com/dmitrijs2005/flipbook/internal/client/picker"
	"github.com/dmitrijs2005/flipbook/internal/client/session"
	"github.com/dmitrijs2005/flipbook/internal/client/shell"
	"github.com/dmitrijs2005/flipbook/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	http   *http.Client
	assets client.Assets
	chrome fullscreen.Chrome
	host   *pageflip.Host
	picker *picker.Picker

	shell  *shell.Shell
	recent *controllers.RecentList
	upload *controllers.Upload
	viewer *controllers.Viewer

	stopProgress func()
}

type Option func(*appOptions)

type appOptions struct {
	in        io.Reader
	out       io.Writer
	logger    logging.Logger
	chrome    fullscreen.Chrome
	measure   pageflip.Measurer
	scheduler session.Scheduler
	http      *http.Client
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *appOptions) { o.in, o.out = in, out }
}

func WithLogger(l logging.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithChrome replaces the terminal alternate-screen chrome.
func WithChrome(c fullscreen.Chrome) Option {
	return func(o *appOptions) { o.chrome = c }
}

func WithMeasurer(m pageflip.Measurer) Option {
	return func(o *appOptions) { o.measure = m }
}

func WithScheduler(s session.Scheduler) Option {
	return func(o *appOptions) { o.scheduler = s }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *appOptions) { o.http = hc }
}

func NewApp(c *config.Config, opts ...Option) (*App, error) {
	o := appOptions{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	o.out = &lockedWriter{w: o.out}
	if o.logger == nil {
		o.logger = logging.NewText(os.Stderr, logging.ParseLevel(c.LogLevel))
	}
	if o.chrome == nil {
		o.chrome = fullscreen.NewScreen(o.out, int(os.Stdout.Fd()))
	}
	if o.measure == nil {
		o.measure = pageflip.TerminalMeasurer(int(os.Stdout.Fd()))
	}
	if o.http == nil {
		o.http = &http.Client{}
	}

	reader := bufio.NewReader(o.in)
	api := client.NewHTTPClient(c.APIBaseURL, client.WithHTTPClient(o.http), client.WithLogger(o.logger))
	deps := controllers.Deps{
		Client:   api,
		Notifier: notify.Log{Next: notify.NewWriter(o.out), Logger: o.logger},
		Logger:   o.logger,
	}
	assets := client.NewAssets(c.AssetBaseURL)

	sh := shell.New(o.logger)
	a := &App{
		config: c,
		logger: o.logger,
		reader: reader,
		out:    o.out,
		http:   o.http,
		assets: assets,
		chrome: o.chrome,
		host:   pageflip.NewHost(o.measure),
		picker: picker.New(c.MaxUploadSize),
		shell:  sh,
		recent: controllers.NewRecentList(deps, sh, &lineConfirmer{reader: reader, out: o.out}),
		upload: controllers.NewUpload(deps),
		viewer: controllers.NewViewer(deps, o.chrome, assets, controllers.ViewerOptions{
			SettleDelay: c.SettleDelay,
			Scheduler:   o.scheduler,
		}),
	}
	sh.Register(shell.Pages{Recent: a.recent, Upload: a.upload, Viewer: a.viewer})
	sh.OnNavigate(func(loc shell.Location) {
		if loc.Route != shell.RouteViewer {
			a.host.Unmount()
		}
	})
	a.stopProgress = a.upload.Subscribe(progressPrinter(o.out))

	return a, nil
}

// Run shows the recent list and serves commands until the user quits or
// input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Flipbook client (type 'help' for commands)")
	if err := a.Go(ctx, models.HomePath); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// Close leaves the active view and restores the terminal.
func (a *App) Close() {
	a.shell.Close()
	if a.chrome.Active() {
		_ = a.chrome.Exit()
	}
	if a.stopProgress != nil {
		a.stopProgress()
	}
}

func (a *App) status() string {
	return a.shell.Current().Path
}

// lockedWriter serialises writes from the REPL and from background
// notifications.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
