package acquire

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pkozlov/agiwatch/internal/util"
)

// Browser is the process-wide headless browser handle. It is lazily
// initialized on first render and must be released with Close. Pages are
// opened and closed per render attempt so high source counts cannot leak
// tabs.
type Browser struct {
	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabTimeout  time.Duration
	started     bool
}

// NewBrowser creates an unstarted browser handle
func NewBrowser(navigationTimeout time.Duration) *Browser {
	if navigationTimeout <= 0 {
		navigationTimeout = 45 * time.Second
	}
	return &Browser{tabTimeout: navigationTimeout}
}

// ensure starts the shared browser process on first use
func (b *Browser) ensure() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return nil
	}

	width, height := randomViewport()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(width, height),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.started = true
	return nil
}

// Render navigates to the URL in a fresh tab and returns the page title and
// rendered HTML. The user agent is re-rolled per tab so consecutive renders
// do not share a fingerprint. The tab is always closed before returning, on
// success and failure alike.
func (b *Browser) Render(ctx context.Context, rawURL string) (title, html string, err error) {
	if err := b.ensure(); err != nil {
		return "", "", err
	}

	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.tabTimeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the tab
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	width, height := randomViewport()

	err = chromedp.Run(tabCtx,
		network.Enable(),
		emulation.SetUserAgentOverride(util.RandomUserAgent()),
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return navigateAndSettle(ctx, rawURL)
		}),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", rawURL, err)
	}

	return title, html, nil
}

const (
	// networkQuietWindow is how long the network must stay silent before a
	// rendered page counts as settled
	networkQuietWindow = 500 * time.Millisecond

	// maxSettle bounds the settle wait so long-polling pages still render
	maxSettle = 10 * time.Second
)

// navigateAndSettle navigates and waits for the network to go quiet, which
// is when rendered SPAs have usually finished painting content. The request
// listener is attached before navigation so the initial burst is counted.
func navigateAndSettle(ctx context.Context, rawURL string) error {
	events := make(chan int, 128)

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()
	chromedp.ListenTarget(lctx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			select {
			case events <- 1:
			default:
			}
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			select {
			case events <- -1:
			default:
			}
		}
	})

	if err := chromedp.Navigate(rawURL).Do(ctx); err != nil {
		return err
	}

	inflight := 0
	quiet := time.NewTimer(networkQuietWindow)
	defer quiet.Stop()
	deadline := time.NewTimer(maxSettle)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			// A page that never goes quiet still rendered its content
			return nil
		case delta := <-events:
			inflight += delta
			if inflight < 0 {
				inflight = 0
			}
			if inflight == 0 {
				if !quiet.Stop() {
					select {
					case <-quiet.C:
					default:
					}
				}
				quiet.Reset(networkQuietWindow)
			}
		case <-quiet.C:
			if inflight == 0 {
				return nil
			}
			quiet.Reset(networkQuietWindow)
		}
	}
}

// Close tears down the shared browser process
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.started = false
}

// randomViewport returns plausible desktop dimensions, randomized per page
// to reduce fingerprinting
func randomViewport() (int, int) {
	widths := []int{1280, 1366, 1440, 1536, 1680, 1920}
	heights := []int{720, 768, 800, 864, 900, 1080}
	return widths[rand.Intn(len(widths))], heights[rand.Intn(len(heights))]
}

// renderJitter returns a randomized 1-3s pause inserted before navigation
func renderJitter() time.Duration {
	return time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
}
