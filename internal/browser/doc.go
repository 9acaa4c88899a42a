// Package browser runs web tasks with a language model in control of a
// browser.
//
// An Agent observes the current page, asks the model for one JSON action
// (navigate, click, type, scroll, extract or done) and executes it through a
// Driver, repeating until the model reports the task as done or the step
// limit is hit. ChromeDriver implements Driver on top of chromedp.
//
// Every run starts its own browser and closes it before returning.
package browser
