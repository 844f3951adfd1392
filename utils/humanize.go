package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// HumanPause sleeps a random time between min and max milliseconds. Form
// fields filled back-to-back at machine speed trip bot heuristics on some
// application platforms.
func HumanPause(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	time.Sleep(time.Duration(rand.Intn(max-min)+min) * time.Millisecond)
}

// MouseJiggle moves the cursor to a random viewport position before an
// interaction.
func MouseJiggle(page playwright.Page) {
	x := float64(rand.Intn(800) + 100) //100-900
	y := float64(rand.Intn(600) + 100) //100-700

	page.Mouse().Move(x, y)
	HumanPause(100, 300)
}

// ScrollIntoView brings a form field on a long application page into the
// viewport before it gets filled, with a small human-like overshoot.
func ScrollIntoView(page playwright.Page, selector string) {
	script := fmt.Sprintf(
		"document.querySelector(%q)?.scrollIntoView({block: 'center'})", selector)
	if _, err := page.Evaluate(script); err != nil {
		return
	}
	page.Mouse().Wheel(0, float64(rand.Intn(80)-40))
	HumanPause(150, 400)
}
