package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/dmitrijs2005/flipbook/internal/client/controllers"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/shell"
	"github.com/dmitrijs2005/flipbook/internal/filex"
	"github.com/dmitrijs2005/flipbook/internal/netx"
)

var (
	errWrongView  = errors.New("not available in this view")
	errNotLoaded  = errors.New("flipbook is not loaded")
	errBadPageNum = errors.New("page must be a number")
)

// Go navigates to path, waits for the view to settle and renders it.
func (a *App) Go(ctx context.Context, p string) error {
	if err := a.shell.Navigate(ctx, p); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Home(ctx context.Context) error       { return a.Go(ctx, models.HomePath) }
func (a *App) UploadPage(ctx context.Context) error { return a.Go(ctx, models.UploadPath) }

func (a *App) Open(ctx context.Context, id string) error {
	return a.Go(ctx, models.ViewerPath(id))
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.require(shell.RouteRecent); err != nil {
		return err
	}
	ok, err := a.recent.Delete(ctx, id)
	if err != nil || !ok {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Select(ctx context.Context, p string) error {
	if err := a.require(shell.RouteUpload); err != nil {
		return err
	}
	f, err := a.picker.Pick(p)
	if err != nil {
		return err
	}
	if err := a.upload.Select(f); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Title(ctx context.Context, text string) error {
	if err := a.require(shell.RouteUpload); err != nil {
		return err
	}
	return a.upload.SetTitle(text)
}

// Submit blocks until the upload has finished.
func (a *App) Submit(ctx context.Context) error {
	if err := a.require(shell.RouteUpload); err != nil {
		return err
	}
	if err := a.upload.Submit(ctx); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Reset(ctx context.Context) error {
	if err := a.require(shell.RouteUpload); err != nil {
		return err
	}
	if err := a.upload.Reset(); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) Next(ctx context.Context) error { return a.turn(ctx, 1) }
func (a *App) Prev(ctx context.Context) error { return a.turn(ctx, -1) }

// Page jumps to the 1-based page n.
func (a *App) Page(ctx context.Context, n string) error {
	i, err := strconv.Atoi(n)
	if err != nil {
		return errBadPageNum
	}
	book, err := a.book()
	if err != nil {
		return err
	}
	book.Flip(i - 1)
	return a.Show(ctx)
}

func (a *App) turn(ctx context.Context, delta int) error {
	book, err := a.book()
	if err != nil {
		return err
	}
	book.Turn(delta)
	return a.Show(ctx)
}

func (a *App) Fullscreen(ctx context.Context) error {
	if err := a.require(shell.RouteViewer); err != nil {
		return err
	}
	if err := a.viewer.ToggleFullscreen(ctx); err != nil {
		return err
	}
	return a.Show(ctx)
}

// Escape is the platform's own fullscreen exit gesture, which bypasses the
// viewer's toggle.
func (a *App) Escape(ctx context.Context) error {
	if n, ok := a.chrome.(interface{ NativeExit() }); ok {
		n.NativeExit()
	} else if err := a.chrome.Exit(); err != nil {
		return err
	}
	return a.Show(ctx)
}

// Download saves the original document of the open flipbook.
func (a *App) Download(ctx context.Context) error {
	if err := a.require(shell.RouteViewer); err != nil {
		return err
	}
	st := a.viewer.State()
	if st.Status != controllers.ViewerLoaded || st.Flipbook.PDFURL == "" {
		return errNotLoaded
	}

	dir, err := filex.EnsureSubdDir(a.config.DownloadDir)
	if err != nil {
		return err
	}
	name := path.Base(st.Flipbook.PDFURL)
	if path.Ext(name) == "" {
		name = st.Flipbook.PublicID + ".pdf"
	}
	f, err := filex.CreateIn(dir, name)
	if err != nil {
		return err
	}

	n, err := netx.Download(ctx, a.http, a.assets.Document(st.Flipbook.PDFURL), f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	a.logger.Info(ctx, "document downloaded", "id", st.Flipbook.PublicID, "bytes", n)
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", f.Name(), n)
	return nil
}

// Show waits for the active controller and renders its view.
func (a *App) Show(ctx context.Context) error {
	switch a.shell.Current().Route {
	case shell.RouteRecent:
		a.recent.Wait()
		renderRecent(a.out, a.recent.State(), a.assets)
	case shell.RouteUpload:
		a.upload.Wait()
		renderUpload(a.out, a.upload.State(), a.config.MaxUploadSize)
	case shell.RouteViewer:
		a.viewer.Wait()
		st := a.viewer.State()
		var book bookRenderer
		if st.Status == controllers.ViewerLoaded {
			book = a.host.Render(a.viewer.Props())
		}
		renderViewer(a.out, st, book, a.assets)
	default:
		fmt.Fprintln(a.out, "Nothing to show")
	}
	return nil
}

func (a *App) require(route string) error {
	if a.shell.Current().Route != route {
		return fmt.Errorf("%w (open %s first)", errWrongView, routeHint(route))
	}
	return nil
}

func (a *App) book() (bookFlipper, error) {
	if err := a.require(shell.RouteViewer); err != nil {
		return nil, err
	}
	a.viewer.Wait()
	if a.viewer.State().Status != controllers.ViewerLoaded {
		return nil, errNotLoaded
	}
	return a.host.Render(a.viewer.Props()), nil
}

func routeHint(route string) string {
	switch route {
	case shell.RouteUpload:
		return "the upload view"
	case shell.RouteViewer:
		return "a flipbook"
	default:
		return "the home view"
	}
}
