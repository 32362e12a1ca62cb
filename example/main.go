// FILE: alteon/example/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"alteon"
)

// sampleVA is a small virtual-appliance dump covering every block shape:
// plain modules, indexed modules, actions, an empty declaration and a
// certificate import with its payload.
const sampleVA = `script start "Application Switch VA" 4  /**** DO NOT EDIT THIS LINE!
/* Configuration dump taken 12:00:00 Mon Jan  5 2026
/c/sys/mmgmt
	addr 10.0.0.10
	mask 255.255.255.0
	ena
/c/l3/if 1
	ena
	addr 10.10.1.5
/c/slb/real 1
	ena
	rip 10.10.2.20
/c/slb/virt Vision-Analytics
	ena
	vip 10.10.3.30
/c/slb/ssl/certs/import cert "WebCert" text
-----BEGIN CERTIFICATE-----
MIIDxTCCAq2gAwIBAgIQAqxcJmoLQJuPC3nyrkYldzANBgkqhkiG9w0BAQUFADBs
-----END CERTIFICATE-----
/c/slb/pip/add 10.250.20.29 820
/c/l2/stg 1/clear
/c/sys/access
script end  /**** DO NOT EDIT THIS LINE!
`

const sampleAWS = `script start "Application Switch VA" 4  /**** DO NOT EDIT THIS LINE!
/c/sys/mmgmt
	addr 10.0.0.10
	mask 255.255.255.0
	ena
/c/AWS/integration
	ena
	region us-east-1
`

func main() {
	dir, err := os.MkdirTemp("", "alteon-example-")
	if err != nil {
		log.Fatalf("❌ Failed to create work directory: %v", err)
	}
	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.RemoveAll(dir)
	}()

	// =========================================================================
	// PART 1: PARSE A SINGLE DUMP
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Parsing a single dump...")

	p := alteon.New()
	res := p.Parse(sampleVA)
	log.Printf("✅ Parsed %d modules (form factor %s, %d warnings).",
		len(res.Modules), res.FormFactor, len(res.Warnings))

	for _, b := range res.Modules {
		fmt.Printf("  %-40s lines %d-%d\n", b.String(), b.LineRange.Start, b.LineRange.End)
	}

	// =========================================================================
	// PART 2: QUERY THE FROZEN SET
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Querying the module set...")

	set := alteon.NewModuleSet(res)
	for _, b := range set.ByPrefix("/c/slb") {
		fmt.Printf("  slb: %s\n", b.String())
	}
	for _, b := range set.ByType(alteon.ModuleCert) {
		fmt.Printf("  cert %q payload is %d bytes\n", b.Multiline.CertName, len(b.Multiline.Body))
	}
	st := set.Stats()
	log.Printf("✅ %d modules across %d unique paths.", st.TotalModules, st.UniquePaths)

	// =========================================================================
	// PART 3: DIRECTORY INGESTION AND DUPLICATE DETECTION
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Ingesting a directory with overlapping dumps...")

	configs := filepath.Join(dir, "configs")
	if err := os.MkdirAll(configs, 0755); err != nil {
		log.Fatalf("❌ Failed to create configs directory: %v", err)
	}
	writeFile(filepath.Join(configs, "switch-01.txt"), sampleVA)
	writeFile(filepath.Join(configs, "switch-02.txt"), sampleAWS)

	ing, err := alteon.NewIngestor(p, alteon.DefaultIngestOptions())
	if err != nil {
		log.Fatalf("❌ Failed to create ingestor: %v", err)
	}
	merged, err := ing.Run(context.Background(), configs)
	if err != nil {
		log.Fatalf("❌ Ingest failed: %v", err)
	}
	log.Printf("✅ Ingested %d modules from %d files.", merged.Len(), len(merged.Sources()))

	for _, g := range merged.Duplicates() {
		fmt.Printf("  duplicate %s appears in %d files (%d occurrences)\n", g.Path, len(g.Files), g.Occurrences)
	}

	// =========================================================================
	// PART 4: WRITE AND RE-READ A DOCUMENT
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 4: Writing the document...")

	out := filepath.Join(dir, "parsed_modules.json")
	doc := alteon.NewDocument(merged)
	if err := doc.WriteFile(out); err != nil {
		log.Fatalf("❌ Failed to write document: %v", err)
	}

	back, err := alteon.ReadDocument(out)
	if err != nil {
		log.Fatalf("❌ Failed to re-read document: %v", err)
	}
	log.Printf("✅ Document round-trip: %d modules, generated %s.",
		len(back.Modules), back.Metadata.GeneratedAt.Format("15:04:05"))
}

func writeFile(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", path, err)
	}
}
