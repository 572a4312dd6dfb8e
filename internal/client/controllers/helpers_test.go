package controllers

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/logging"
	"github.com/dmitrijs2005/flipbook/internal/testutil"
)

type fixture struct {
	backend  *testutil.Backend
	notes    *testutil.Recorder
	deps     Deps
	assets   client.Assets
	nav      *testutil.Navigator
	confirm  *testutil.Confirmer
	chrome   *testutil.Chrome
	schedule *testutil.Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewBackend(t)
	notes := &testutil.Recorder{}
	return &fixture{
		backend: b,
		notes:   notes,
		deps: Deps{
			Client:   client.NewHTTPClient(b.APIURL()),
			Notifier: notes,
			Logger:   logging.NewNop(),
		},
		assets:   client.NewAssets(b.AssetURL()),
		nav:      &testutil.Navigator{},
		confirm:  &testutil.Confirmer{Answer: true},
		chrome:   &testutil.Chrome{Auto: true},
		schedule: &testutil.Scheduler{},
	}
}

var sampleBook = models.Flipbook{
	PublicID:  "abc123",
	Title:     "Annual Report",
	CreatedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	Images: []string{
		"/uploads/images/abc123/page-01.png",
		"/uploads/images/abc123/page-02.png",
		"/uploads/images/abc123/page-03.png",
	},
	PDFURL: "/uploads/pdfs/abc123.pdf",
}
