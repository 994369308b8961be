// Package chrome implements portal.Session on a headless Chrome driven
// over the DevTools protocol. Each session gets its own browser process
// and profile directory so concurrent sessions cannot poison each
// other's authenticated state.
package chrome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"

	"github.com/example/club-scheduler/internal/booking"
	"github.com/example/club-scheduler/internal/portal"
)

type Config struct {
	// BaseURL is the portal entry point, e.g. https://rcpolo.com.
	BaseURL string

	Headless bool

	// StepTimeout bounds every wait for a page or element.
	StepTimeout time.Duration

	// ValidationWait bounds the server-side participant validation round
	// trip. The portal resolves an identifier to a display name
	// asynchronously after focus leaves the field.
	ValidationWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.StepTimeout <= 0 {
		c.StepTimeout = 10 * time.Second
	}
	if c.ValidationWait <= 0 {
		c.ValidationWait = 8 * time.Second
	}
	return c
}

// Driver is one isolated Chrome session. Not safe for concurrent use;
// run one driver per booking request.
type Driver struct {
	cfg      Config
	arenaDir string

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewDriver launches a browser with a fresh profile arena. The caller
// must Close the driver on every exit path.
func NewDriver(cfg Config) (*Driver, error) {
	cfg = cfg.withDefaults()

	arena := filepath.Join(os.TempDir(), "clubsched-"+uuid.NewString())
	if err := os.MkdirAll(arena, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create profile dir: %v", portal.ErrInfra, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.UserDataDir(arena),
		chromedp.WindowSize(1920, 1080),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	d := &Driver{
		cfg:         cfg,
		arenaDir:    arena,
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}

	// Spawn the browser now so a broken chrome install surfaces as an
	// infrastructure error instead of a timeout mid-booking.
	startCtx, cancel := context.WithTimeout(ctx, cfg.StepTimeout)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		d.Close()
		return nil, fmt.Errorf("%w: launch browser: %v", portal.ErrInfra, err)
	}
	return d, nil
}

// Context exposes the session's browser context for the recorder.
func (d *Driver) Context() context.Context { return d.ctx }

func (d *Driver) Close() {
	d.cancelCtx()
	d.cancelAlloc()
	_ = os.RemoveAll(d.arenaDir)
}

// stepContext bounds one step by the step timeout. The step runs on the
// browser's context but must also die with the caller's, so run-level
// cancellation interrupts an in-flight step instead of waiting it out.
func (d *Driver) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(d.ctx, d.cfg.StepTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

// run executes actions against the session with the step timeout applied.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tctx, cancel := d.stepContext(ctx)
	defer cancel()
	err := chromedp.Run(tctx, actions...)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

func (d *Driver) Login(ctx context.Context, creds booking.Credentials) error {
	if err := d.run(ctx, chromedp.Navigate(d.cfg.BaseURL)); err != nil {
		return fmt.Errorf("%w: open portal: %v", portal.ErrElementTimeout, err)
	}

	// Consent prompt does not always appear (cached profile or regional
	// variation); give it a short window and move on.
	consentCtx, cancel := context.WithTimeout(d.ctx, 3*time.Second)
	_ = chromedp.Run(consentCtx,
		chromedp.Click("#onetrust-accept-btn-handler", chromedp.ByQuery),
	)
	cancel()

	err := d.run(ctx,
		chromedp.Click("a.acceso-socios", chromedp.ByQuery),
		chromedp.WaitVisible("#txtUsername", chromedp.ByQuery),
		chromedp.SendKeys("#txtUsername", creds.Username, chromedp.ByQuery),
		chromedp.SendKeys("#txtPassword", creds.Password, chromedp.ByQuery),
		chromedp.Click("#btnLogin", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("%w: login form: %v", portal.ErrElementTimeout, err)
	}

	// The reservation view only renders for an authenticated member. If
	// it never appears and the login button is still around, the portal
	// rejected the credentials.
	err = d.run(ctx,
		chromedp.Navigate(d.cfg.BaseURL+"/areasocios/es/ov"),
		chromedp.WaitVisible("#lstDate", chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}
	var loginVisible bool
	checkCtx, cancel := context.WithTimeout(d.ctx, 2*time.Second)
	defer cancel()
	_ = chromedp.Run(checkCtx,
		chromedp.Evaluate(`!!document.querySelector("#btnLogin")`, &loginVisible),
	)
	if loginVisible {
		return portal.ErrAuthFailed
	}
	return fmt.Errorf("%w: reservation view: %v", portal.ErrElementTimeout, err)
}

func (d *Driver) SelectDay(ctx context.Context, day portal.Day) error {
	val := "0"
	if day == portal.DayTomorrow {
		val = "1"
	}
	err := d.run(ctx,
		chromedp.SetValue("#lstDate", val, chromedp.ByQuery),
		// SetValue does not fire the change handler the calendar listens on.
		chromedp.Evaluate(`document.getElementById("lstDate").dispatchEvent(new Event("change", {bubbles: true}))`, nil),
	)
	if err != nil {
		return fmt.Errorf("%w: date dropdown: %v", portal.ErrElementTimeout, err)
	}
	return nil
}

func (d *Driver) SelectSlot(ctx context.Context, sport booking.Sport, hour string) error {
	var sel string
	switch sport {
	case booking.SportPadel:
		sel = fmt.Sprintf(
			`//div[contains(@class,'hour') and not(contains(@class,'closed')) and .//div[contains(@class,'time') and text()='%s']]`,
			hour)
	case booking.SportTennis:
		sel = fmt.Sprintf(
			`//div[contains(@class,'category') and text()='Tenis']/following-sibling::div[contains(@class,'hour') and not(contains(@class,'closed')) and contains(@data-original-title,'%s - ')]`,
			hour)
	default:
		return fmt.Errorf("%w: no slot selector for sport %q", portal.ErrSlotUnavailable, sport)
	}

	if err := d.run(ctx, chromedp.Click(sel, chromedp.BySearch)); err != nil {
		return fmt.Errorf("%w: %s %s: %v", portal.ErrSlotUnavailable, sport, hour, err)
	}
	return nil
}

// playerFields returns the identifier and resolved-name selectors for
// participant i. The form numbers its fields for padel and uses a single
// unnumbered pair for tennis.
func playerFields(sport booking.Sport, i int) (string, string) {
	if sport == booking.SportTennis {
		return "#txtNIF", "#txtName"
	}
	return fmt.Sprintf("#txtNIF%d", i+1), fmt.Sprintf("#txtName%d", i+1)
}

func (d *Driver) EnterPlayer(ctx context.Context, i int, sport booking.Sport, playerID string) (string, error) {
	fieldSel, nameSel := playerFields(sport, i)

	err := d.run(ctx,
		chromedp.WaitVisible(fieldSel, chromedp.ByQuery),
		chromedp.Click(fieldSel, chromedp.ByQuery),
		// Tab out of the field to trigger the portal's identifier lookup.
		chromedp.SendKeys(fieldSel, playerID+kb.Tab, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: participant field %s: %v", portal.ErrElementTimeout, fieldSel, err)
	}

	// The display name fills in asynchronously once the portal has
	// validated the identifier server-side. No name within the bound
	// means the identifier was rejected (or the portal is down, which is
	// indistinguishable from here).
	deadline := time.Now().Add(d.cfg.ValidationWait)
	for {
		var name string
		pollCtx, cancel := context.WithTimeout(d.ctx, 2*time.Second)
		err := chromedp.Run(pollCtx, chromedp.Value(nameSel, &name, chromedp.ByQuery))
		cancel()
		if err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name), nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: %s never resolved", portal.ErrValidationRejected, playerID)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (d *Driver) AcceptTerms(ctx context.Context) error {
	if err := d.run(ctx, chromedp.Click("#chkAccept", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: conditions checkbox: %v", portal.ErrElementTimeout, err)
	}
	return nil
}

func (d *Driver) Submit(ctx context.Context) error {
	err := d.run(ctx,
		chromedp.Click(`//button[@id='btnSubmit' and contains(text(), 'Reservar')]`, chromedp.BySearch),
		// Give the confirmation round trip a moment before teardown.
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("%w: reserve button: %v", portal.ErrElementTimeout, err)
	}
	return nil
}

// Screenshot grabs a JPEG frame of the current page state.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	tctx, cancel := context.WithTimeout(d.ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.FullScreenshot(&buf, 80)); err != nil {
		return nil, err
	}
	return buf, nil
}

// CourtAvailability is one free-court reading scraped from the calendar.
type CourtAvailability struct {
	Sport string `json:"sport"`
	Hour  string `json:"hour"`
	Free  int    `json:"free"`
}

// Availability scrapes free-court counts per sport and hour from the
// currently selected day of the reservation calendar.
func (d *Driver) Availability(ctx context.Context) ([]CourtAvailability, error) {
	const script = `(() => {
		const out = [];
		const body = document.querySelector(".book-calendar .body");
		if (!body) return out;
		for (const cat of body.children) {
			const nameEl = cat.querySelector(".category");
			if (!nameEl) continue;
			const sport = nameEl.textContent.trim();
			for (const hour of cat.querySelectorAll(".hour")) {
				if (hour.classList.contains("closed")) continue;
				let time = "";
				const t = hour.querySelector(".time");
				if (t) {
					time = t.textContent.trim();
				} else {
					const m = (hour.getAttribute("data-original-title") || "").match(/(\d{2}:\d{2}) - /);
					if (m) time = m[1];
				}
				const places = hour.querySelector(".places");
				if (!time || !places) continue;
				const free = parseInt(places.textContent, 10);
				if (!isNaN(free)) out.push({sport: sport, hour: time, free: free});
			}
		}
		return out;
	})()`

	var slots []CourtAvailability
	if err := d.run(ctx, chromedp.Evaluate(script, &slots)); err != nil {
		return nil, fmt.Errorf("%w: scrape calendar: %v", portal.ErrElementTimeout, err)
	}
	return slots, nil
}

var _ portal.Session = (*Driver)(nil)
