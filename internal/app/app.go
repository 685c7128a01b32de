package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"PriceTracker/internal/database"
	"PriceTracker/internal/notifier"
	"PriceTracker/internal/scraper"
	"PriceTracker/internal/scraper/amazon"
	"PriceTracker/internal/scraper/gamestop"
	"PriceTracker/internal/server"
	"PriceTracker/internal/tracker"
	"PriceTracker/pkg/config"
	"PriceTracker/utils"
)

// App is the main application structure holding all dependencies.
type App struct {
	Config *config.Config
	Store  *database.SnapshotStore
}

// New creates an application instance from the config file.
func New(configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	store, err := database.Open(cfg.Tracker.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Store: store}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	a.Store.Close()
}

// RunTracker starts the endless sweep loop and blocks until ctx is
// cancelled.
func (a *App) RunTracker(ctx context.Context) error {
	log.Println("--- Starting Product Tracking ---")
	t, err := a.buildTracker()
	if err != nil {
		return err
	}
	return t.Run(ctx)
}

// RunSweep performs exactly one pass over the tracked URL set.
func (a *App) RunSweep(ctx context.Context) error {
	log.Println("--- Starting Single Sweep ---")
	t, err := a.buildTracker()
	if err != nil {
		return err
	}
	t.Sweep(ctx)
	log.Println("--- Sweep Finished ---")
	return nil
}

func (a *App) buildTracker() (*tracker.Tracker, error) {
	urlList, err := config.LoadURLList(a.Config.Tracker.URLsFile)
	if err != nil {
		return nil, err
	}
	log.Printf("Tracking %d Amazon and %d GameStop URLs from %s",
		len(urlList.Amazon), len(urlList.GameStop), a.Config.Tracker.URLsFile)

	router := scraper.NewRouter(map[string]scraper.Fetcher{
		"amazon.it":   amazon.New(),
		"gamestop.it": gamestop.New(a.Config.GameStop.Headless),
	})

	workers := utils.GetOptimalWorkerCount(a.Config.Tracker.Workers)
	delays := map[string]time.Duration{
		"Amazon":   a.Config.Amazon.MinFetchDelay(),
		"GameStop": a.Config.GameStop.MinFetchDelay(),
	}

	return tracker.New(
		a.Store,
		router,
		a.productNotifier(),
		a.operatorAlerter(),
		a.Config.Tracker,
		urlList.All(),
		workers,
		delays,
	), nil
}

func (a *App) productNotifier() notifier.Notifier {
	if a.Config.Telegram.BotToken == "" || a.Config.Telegram.ChannelID == "" {
		log.Println("Telegram not configured. Product alerts go to the log.")
		return notifier.LogNotifier{}
	}
	return notifier.NewTelegramNotifier(a.Config.Telegram.BotToken, a.Config.Telegram.ChannelID)
}

func (a *App) operatorAlerter() notifier.OperatorAlerter {
	email := a.Config.Email
	if email.SMTPServer == "" || email.To == "" {
		log.Println("Email not configured. Operator alerts go to the log.")
		return notifier.LogAlerter{}
	}
	return notifier.NewEmailAlerter(email.SMTPServer, email.SMTPPort, email.Username, email.Password, email.To)
}

// RunDiscovery scrapes the configured listing pages for new product
// links and merges them into the URL file.
func (a *App) RunDiscovery(ctx context.Context) error {
	log.Println("--- Starting URL Discovery Task ---")
	urlList, err := config.LoadURLList(a.Config.Tracker.URLsFile)
	if err != nil {
		return err
	}

	filter := amazon.DiscoveryFilter{
		Keywords:         a.Config.Filter.Keywords,
		ExcludedKeywords: a.Config.Filter.ExcludedKeywords,
		ExcludedURLs:     a.Config.Filter.ExcludedURLs,
		ReferralTag:      a.Config.Filter.ReferralTag,
	}

	totalAdded := 0
	amazonFetcher := amazon.New()
	for _, listURL := range a.Config.Amazon.DiscoveryURLs {
		links, err := amazonFetcher.DiscoverProductLinks(ctx, listURL, filter)
		if err != nil {
			log.Printf("Amazon discovery failed for %s: %v", listURL, err)
			continue
		}
		var added int
		urlList.Amazon, added = config.MergeURLs(urlList.Amazon, links)
		totalAdded += added
	}

	gamestopFetcher := gamestop.New(a.Config.GameStop.Headless)
	for _, listURL := range a.Config.GameStop.DiscoveryURLs {
		links, err := gamestopFetcher.DiscoverProductLinks(ctx, listURL)
		if err != nil {
			log.Printf("GameStop discovery failed for %s: %v", listURL, err)
			continue
		}
		var added int
		urlList.GameStop, added = config.MergeURLs(urlList.GameStop, links)
		totalAdded += added
	}

	if totalAdded == 0 {
		log.Println("No new URLs found. Keeping existing list.")
		return nil
	}
	if err := config.SaveURLList(a.Config.Tracker.URLsFile, urlList); err != nil {
		return err
	}
	log.Printf("Added %d new URLs. Total: %d Amazon, %d GameStop.",
		totalAdded, len(urlList.Amazon), len(urlList.GameStop))
	return nil
}

// ListProducts prints every stored record, valid or not.
func (a *App) ListProducts() error {
	records, err := a.Store.All(0, 0)
	if err != nil {
		return err
	}
	for _, rec := range records {
		price := "n/d"
		if rec.Price != nil {
			price = fmt.Sprintf("%.2f", *rec.Price)
		}
		flag := " "
		if rec.IsInvalid {
			flag = "!"
		}
		fmt.Printf("%s %-12s %8s€  %s  %s\n", flag, rec.Availability, price, rec.LastUpdated.Format("2006-01-02 15:04"), rec.URL)
	}
	log.Printf("%d products stored.", len(records))
	return nil
}

// DeleteProduct removes one record permanently.
func (a *App) DeleteProduct(url string) error {
	canonical := utils.CanonicalizeURL(url)
	if err := a.Store.Delete(canonical); err != nil {
		return err
	}
	log.Printf("Deleted product: %s", canonical)
	return nil
}

// RunServer exposes the read-only products API.
func (a *App) RunServer() error {
	return server.Start(a.Store, a.Config.Server.Port)
}
