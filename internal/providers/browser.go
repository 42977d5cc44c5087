package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// Pricing pages serve degraded content to obvious headless agents.
const scraperUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Table is the text content of one rendered HTML table: rows of cell texts.
type Table [][]string

// tableExtractJS pulls every table on the page into a rows-of-cells array.
const tableExtractJS = `Array.from(document.querySelectorAll('table')).map(t =>
	Array.from(t.rows).map(r =>
		Array.from(r.cells).map(c => c.innerText.trim())))`

// Browser drives a headless Chrome instance for the scraper adapters. One
// instance is shared; the orchestrator bounds concurrent sessions.
type Browser struct {
	execPath string
	wait     time.Duration
}

// NewBrowser creates a headless browser wrapper. execPath points at the
// chromium binary; wait is the settle delay after navigation so client-side
// rendering finishes before extraction.
func NewBrowser(execPath string, wait time.Duration) *Browser {
	return &Browser{execPath: execPath, wait: wait}
}

// ExtractTables navigates to url and returns the tables rendered there,
// keyed by pricing tier tab. The default page state is keyed ""; for each
// name in tabs, the matching [role="tab"] element is clicked and the tables
// re-extracted under that key. A tab that cannot be clicked is skipped.
func (b *Browser) ExtractTables(ctx context.Context, url string, tabs []string) (map[string][]Table, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(b.execPath),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	result := make(map[string][]Table)

	var defaultTables []Table
	if err := chromedp.Run(browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(scraperUserAgent).Do(ctx)
		}),
		chromedp.Navigate(url),
		chromedp.Sleep(b.wait),
		chromedp.Evaluate(tableExtractJS, &defaultTables),
	); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", url, err)
	}
	result[""] = defaultTables

	for _, tab := range tabs {
		var clicked bool
		var tabTables []Table
		err := chromedp.Run(browserCtx,
			chromedp.Evaluate(clickTabJS(tab), &clicked),
			chromedp.Sleep(time.Second),
			chromedp.Evaluate(tableExtractJS, &tabTables),
		)
		if err != nil || !clicked {
			continue
		}
		result[tab] = tabTables
	}

	return result, nil
}

func clickTabJS(name string) string {
	return fmt.Sprintf(`(() => {
		const tabs = document.querySelectorAll('[role="tab"], [data-radix-collection-item]');
		for (const t of tabs) {
			if (t.textContent.trim() === %q) { t.click(); return true; }
		}
		return false;
	})()`, name)
}
