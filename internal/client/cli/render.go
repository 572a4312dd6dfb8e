package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/controllers"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
)

const (
	dateLayout  = "Jan 2, 2006"
	progressLen = 30
)

type bookRenderer interface {
	Render(w io.Writer) error
}

type bookFlipper interface {
	Turn(delta int) bool
	Flip(index int) bool
}

func renderRecent(w io.Writer, st controllers.RecentState, assets client.Assets) {
	fmt.Fprintln(w, "== Recent Flipbooks ==")
	switch st.Status {
	case controllers.RecentLoading, controllers.RecentIdle:
		fmt.Fprintln(w, "Loading recent flipbooks...")
		return
	case controllers.RecentLoadFailed:
		fmt.Fprintln(w, st.Error)
		return
	}

	if st.DeleteError != "" {
		fmt.Fprintln(w, "Error:", st.DeleteError)
	}
	if len(st.Items) == 0 {
		fmt.Fprintln(w, "No flipbooks available. Upload one now!")
		fmt.Fprintln(w, "  upload:", models.UploadPath)
		return
	}
	for i, it := range st.Items {
		fmt.Fprintf(w, "%2d. %s\n", i+1, it.Title)
		fmt.Fprintf(w, "    created:   %s\n", formatDate(it.CreatedAt))
		fmt.Fprintf(w, "    thumbnail: %s\n", assets.Thumbnail(it.PublicID))
		fmt.Fprintf(w, "    view:      %s\n", models.ViewerPath(it.PublicID))
		fmt.Fprintf(w, "    id:        %s\n", it.PublicID)
	}
}

func renderUpload(w io.Writer, st controllers.UploadState, maxSize int64) {
	fmt.Fprintln(w, "== Upload PDF to Create Flipbook ==")

	if st.Status == controllers.UploadSucceeded {
		fmt.Fprintln(w, "PDF uploaded successfully!")
		fmt.Fprintln(w, "  view flipbook:", st.ViewerPath())
		fmt.Fprintln(w, "  (type 'another' to upload another PDF)")
		return
	}

	if st.File.IsZero() {
		fmt.Fprintln(w, "Select a PDF file with 'select <path>'")
		fmt.Fprintf(w, "Maximum file size: %s\n", formatMB(maxSize, 0))
	} else {
		fmt.Fprintf(w, "Selected file: %s (%s)\n", st.File.Name, formatMB(st.File.Size, 2))
		fmt.Fprintf(w, "Title: %s\n", st.Title)
	}

	if st.Status == controllers.Uploading {
		fmt.Fprintln(w, progressBar(st.Progress))
	}
	if st.Error != "" {
		fmt.Fprintln(w, "Error:", st.Error)
	}
}

func renderViewer(w io.Writer, st controllers.ViewerState, book bookRenderer, assets client.Assets) {
	switch st.Status {
	case controllers.ViewerLoading, controllers.ViewerIdle:
		fmt.Fprintln(w, "Loading flipbook...")
		return
	case controllers.ViewerNotFound, controllers.ViewerLoadFailed:
		fmt.Fprintln(w, st.Error)
		fmt.Fprintln(w, "  back to home:", models.HomePath)
		return
	}

	fb := st.Flipbook
	mode := "windowed"
	if st.Fullscreen {
		mode = "fullscreen"
	}
	fmt.Fprintf(w, "== %s == (%s)\n", fb.Title, mode)
	if book != nil {
		_ = book.Render(w)
	}
	fmt.Fprintf(w, "Created: %s\n", formatDate(fb.CreatedAt))
	fmt.Fprintln(w, "  back to home:", models.HomePath)
	if fb.PDFURL != "" {
		fmt.Fprintln(w, "  original PDF:", assets.Document(fb.PDFURL))
	}
}

func progressBar(pct int) string {
	filled := pct * progressLen / 100
	return fmt.Sprintf("[%s%s] %d%% uploaded",
		strings.Repeat("#", filled), strings.Repeat("-", progressLen-filled), pct)
}

// progressPrinter reports upload progress once per distinct percentage.
func progressPrinter(w io.Writer) func(controllers.UploadState) {
	var mu sync.Mutex
	last := -1
	return func(st controllers.UploadState) {
		mu.Lock()
		defer mu.Unlock()
		if st.Status != controllers.Uploading {
			last = -1
			return
		}
		if st.Progress == last {
			return
		}
		last = st.Progress
		fmt.Fprintln(w, progressBar(st.Progress))
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatMB(size int64, prec int) string {
	return fmt.Sprintf("%.*f MB", prec, float64(size)/1024/1024)
}
