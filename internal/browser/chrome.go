package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultActionTimeout bounds a single browser action.
const DefaultActionTimeout = 30 * time.Second

// observeScript collects the page state and tags interactive elements with a
// stable attribute so the model can address them by selector.
const observeScript = `(() => {
  const sel = 'a[href], button, input, textarea, select, [role="button"], [role="link"], [onclick]';
  const visible = el => {
    const r = el.getBoundingClientRect();
    const s = window.getComputedStyle(el);
    return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
  };
  const elements = [];
  let n = 0;
  for (const el of document.querySelectorAll(sel)) {
    if (!visible(el)) continue;
    n++;
    el.setAttribute('data-assistant-id', String(n));
    const text = (el.innerText || el.value || el.getAttribute('aria-label') || el.getAttribute('placeholder') || el.getAttribute('name') || '').trim().slice(0, 80);
    elements.push({
      selector: '[data-assistant-id="' + n + '"]',
      tag: el.tagName.toLowerCase(),
      type: el.getAttribute('type') || '',
      text: text,
      href: el.tagName === 'A' ? el.href : ''
    });
    if (elements.length >= 100) break;
  }
  return {
    url: location.href,
    title: document.title,
    text: document.body ? document.body.innerText : '',
    elements: elements
  };
})()`

// ChromeDriver drives one headless Chrome tab through the DevTools protocol.
type ChromeDriver struct {
	ctx           context.Context
	cancelTab     context.CancelFunc
	cancelAlloc   context.CancelFunc
	actionTimeout time.Duration
	closeOnce     sync.Once
	closeErr      error
}

// ChromeOptions configures NewChromeDriver.
type ChromeOptions struct {
	// Headless hides the browser window.
	Headless bool

	// ActionTimeout bounds each action (default: DefaultActionTimeout).
	ActionTimeout time.Duration

	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// NewChromeDriver starts Chrome and opens a blank tab. The browser is killed
// when ctx is canceled or Close is called.
func NewChromeDriver(ctx context.Context, opts ChromeOptions) (*ChromeDriver, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(1280, 900),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run launches the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	return &ChromeDriver{
		ctx:           tabCtx,
		cancelTab:     cancelTab,
		cancelAlloc:   cancelAlloc,
		actionTimeout: timeout,
	}, nil
}

// ChromeFactory returns a DriverFactory launching a new Chrome per run.
func ChromeFactory(opts ChromeOptions) DriverFactory {
	return func(ctx context.Context) (Driver, error) {
		return NewChromeDriver(ctx, opts)
	}
}

// run executes actions on the tab, bounded by the action timeout and ctx.
func (d *ChromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.ctx, d.actionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (d *ChromeDriver) Click(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (d *ChromeDriver) Type(ctx context.Context, selector, text string) error {
	return d.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

func (d *ChromeDriver) Scroll(ctx context.Context, direction string) error {
	dy := "window.innerHeight * 0.8"
	if direction == "up" {
		dy = "-" + dy
	}
	return d.run(ctx, chromedp.Evaluate("window.scrollBy(0, "+dy+")", nil))
}

func (d *ChromeDriver) Extract(ctx context.Context, selector string) (string, error) {
	var text string
	if selector == "" {
		err := d.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text))
		return text, err
	}
	err := d.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery))
	return text, err
}

func (d *ChromeDriver) Observe(ctx context.Context) (*Observation, error) {
	var obs Observation
	if err := d.run(ctx, chromedp.Evaluate(observeScript, &obs)); err != nil {
		return nil, err
	}
	return &obs, nil
}

// Close shuts the browser down and waits for the process to exit.
func (d *ChromeDriver) Close() error {
	d.closeOnce.Do(func() {
		err := chromedp.Cancel(d.ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		d.cancelTab()
		d.cancelAlloc()
		d.closeErr = err
	})
	return d.closeErr
}
