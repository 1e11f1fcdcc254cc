package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/joho/godotenv"

	"github.com/forest-guardian/landcube/internal/catalog"
	"github.com/forest-guardian/landcube/internal/ingest"
	"github.com/forest-guardian/landcube/internal/notification"
	"github.com/forest-guardian/landcube/internal/properties"
)

func main() {
	var (
		collection = flag.String("collection", "", "geojson collection under data/geojsons")
		regionID   = flag.String("region", "", "region_id inside the collection")
		product    = flag.String("product", "sentinel_2_l2a", "product profile to download")
		startArg   = flag.String("start", "", "first acquisition date (YYYY-MM-DD)")
		endArg     = flag.String("end", "", "last acquisition date (YYYY-MM-DD), defaults to today")
		interval   = flag.Int("interval", 5, "days between requested scenes")
		workers    = flag.Int("workers", 0, "parallel downloads, 0 for the default")
		notify     = flag.Bool("notify", false, "send a Discord notification when done")
	)
	flag.Parse()

	if *collection == "" || *regionID == "" || *startArg == "" {
		flag.Usage()
		log.Fatal("collection, region and start are required")
	}

	// Load environment variables
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		fmt.Println("Make sure you have set the required environment variables:")
		fmt.Println("- COPERNICUS_CLIENT_ID")
		fmt.Println("- COPERNICUS_CLIENT_SECRET")
		fmt.Println("- ROOT_PATH")
		fmt.Println()
	}

	startDate, err := time.Parse("2006-01-02", *startArg)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	endDate := time.Now().UTC()
	if *endArg != "" {
		if endDate, err = time.Parse("2006-01-02", *endArg); err != nil {
			log.Fatalf("Invalid end date: %v", err)
		}
	}

	profile, ok := ingest.Profiles()[*product]
	if !ok {
		log.Fatalf("Unknown product %q", *product)
	}

	// Initialize GDAL
	godal.RegisterAll()

	region, err := ingest.LoadRegion(*collection, *regionID)
	if err != nil {
		log.Fatalf("Failed to load region: %v", err)
	}
	defer region.Close()

	cat, err := catalog.Open(properties.CatalogPath())
	if err != nil {
		log.Fatalf("Failed to open the scene catalog: %v", err)
	}
	defer cat.Close()

	fmt.Println("=== Landcube Scene Fetch ===")
	fmt.Printf("Product: %s\n", profile.Product)
	fmt.Printf("Region: %s/%s\n", *collection, *regionID)
	fmt.Printf("Window: %s to %s every %d days\n",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
		*interval)
	fmt.Println()

	ingestor := &ingest.Ingestor{Catalog: cat, Profile: profile, Workers: *workers}
	started := time.Now()
	result, err := ingestor.FetchRange(region, startDate, endDate, *interval)
	if *notify {
		notification.NotifyJob(fmt.Sprintf("Scene fetch %s/%s", *collection, *regionID), time.Since(started), err)
	}
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Downloaded: %d\n", result.Downloaded)
	fmt.Printf("Skipped: %d\n", result.Skipped)
	fmt.Printf("Fully clouded: %d\n", result.Invalid)
}
