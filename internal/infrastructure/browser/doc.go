// Package browser owns the long-lived Chrome instance that every vendor and
// ShopVox adapter drives.
//
// This package contains:
// - Session, a chromedp allocator plus one browser with a persistent profile
// - pages: each page is a tab, carried through context.Context
// - automatic closing of popups opened by any page
// - Stabilize, bounded polling for lazily rendered lists
// - Download capture for files a page triggers
//
// Example usage:
//
//	session, err := browser.New(&browser.Config{
//	    UserDataDir: "./pw-data",
//	    Headless:    true,
//	    Logger:      logger,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	ctx, closePage, err := session.NewPage(ctx)
//	if err != nil {
//	    return err
//	}
//	defer closePage()
//
//	err = browser.Run(ctx, 30*time.Second, chromedp.Navigate("https://sanmar.com"))
package browser
