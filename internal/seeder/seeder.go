// Package seeder synthesizes Suricata EVE log lines so the engine can
// be exercised without a running sensor.
package seeder

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// eveTimeLayout is Suricata's EVE timestamp format.
const eveTimeLayout = "2006-01-02T15:04:05.000000-0700"

var signatures = []struct {
	id       int
	name     string
	category string
	severity int
}{
	{2010935, "ET SCAN Suspicious inbound to MSSQL port 1433", "Potentially Bad Traffic", 2},
	{2001219, "ET SCAN Potential SSH Scan", "Attempted Information Leak", 2},
	{2403331, "ET CINS Active Threat Intelligence Poor Reputation IP", "Misc Attack", 2},
	{2100498, "GPL ATTACK_RESPONSE id check returned root", "Potentially Bad Traffic", 1},
	{2013028, "ET POLICY curl User-Agent Outbound", "Attempted Information Leak", 3},
	{2019401, "ET SCAN NMAP OS Detection Probe", "Attempted Information Leak", 2},
	{2008578, "ET SCAN Behavioral Unusual Port 445 traffic", "Misc activity", 3},
	{2522000, "ET TOR Known Tor Exit Node Traffic", "Misc Attack", 2},
	{2001978, "ET POLICY SSH session in progress on Unusual Port", "Potential Corporate Privacy Violation", 2},
	{2014726, "ET POLICY Outdated Windows Flash Version IE", "Potentially Bad Traffic", 1},
}

// Generator produces EVE JSON lines for alert and non-alert event types.
type Generator struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewGenerator seeds a deterministic generator. A seed of zero uses the
// current time.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Line renders one EVE document of the given event type as a JSON line
// without the trailing newline.
func (g *Generator) Line(eventType string, ts time.Time) ([]byte, error) {
	var doc map[string]interface{}
	switch eventType {
	case "alert":
		doc = g.alertEvent(ts)
	case "flow":
		doc = g.flowEvent(ts)
	case "dns":
		doc = g.dnsEvent(ts)
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	return json.Marshal(doc)
}

func (g *Generator) alertEvent(ts time.Time) map[string]interface{} {
	sig := signatures[g.rng.Intn(len(signatures))]
	return map[string]interface{}{
		"timestamp":  ts.Format(eveTimeLayout),
		"flow_id":    g.rng.Int63(),
		"event_type": "alert",
		"src_ip":     g.faker.IPv4Address(),
		"src_port":   g.faker.Number(1024, 65535),
		"dest_ip":    g.faker.IPv4Address(),
		"dest_port":  g.wellKnownPort(),
		"proto":      g.proto(),
		"alert": map[string]interface{}{
			"action":       "allowed",
			"gid":          1,
			"signature_id": sig.id,
			"rev":          g.faker.Number(1, 9),
			"signature":    sig.name,
			"category":     sig.category,
			"severity":     sig.severity,
		},
	}
}

func (g *Generator) flowEvent(ts time.Time) map[string]interface{} {
	return map[string]interface{}{
		"timestamp":  ts.Format(eveTimeLayout),
		"flow_id":    g.rng.Int63(),
		"event_type": "flow",
		"src_ip":     g.faker.IPv4Address(),
		"src_port":   g.faker.Number(1024, 65535),
		"dest_ip":    g.faker.IPv4Address(),
		"dest_port":  g.wellKnownPort(),
		"proto":      g.proto(),
		"flow": map[string]interface{}{
			"pkts_toserver":  g.faker.Number(1, 500),
			"pkts_toclient":  g.faker.Number(1, 500),
			"bytes_toserver": g.faker.Number(60, 1_000_000),
			"bytes_toclient": g.faker.Number(60, 1_000_000),
		},
	}
}

func (g *Generator) dnsEvent(ts time.Time) map[string]interface{} {
	return map[string]interface{}{
		"timestamp":  ts.Format(eveTimeLayout),
		"flow_id":    g.rng.Int63(),
		"event_type": "dns",
		"src_ip":     g.faker.IPv4Address(),
		"src_port":   g.faker.Number(1024, 65535),
		"dest_ip":    g.faker.IPv4Address(),
		"dest_port":  53,
		"proto":      "UDP",
		"dns": map[string]interface{}{
			"type":   "query",
			"id":     g.faker.Number(0, 65535),
			"rrname": g.faker.DomainName(),
			"rrtype": "A",
		},
	}
}

func (g *Generator) proto() string {
	protos := []string{"TCP", "TCP", "TCP", "UDP"}
	return protos[g.rng.Intn(len(protos))]
}

func (g *Generator) wellKnownPort() int {
	ports := []int{22, 53, 80, 443, 445, 1433, 3389, 8080}
	return ports[g.rng.Intn(len(ports))]
}

// Options controls a seeding run.
type Options struct {
	Path string
	// Count is the number of well-formed EVE lines to append.
	Count int
	// Types cycles through the event types to emit.
	Types []string
	// Spread places timestamps across the window ending now.
	Spread time.Duration
	// Malformed interleaves this many garbage lines, for exercising
	// the parser's per-line tolerance.
	Malformed int
}

// Run appends generated lines to the log at opts.Path, creating it if
// needed. Returns the number of lines written including malformed ones.
func Run(g *Generator, opts Options) (int, error) {
	if opts.Count <= 0 && opts.Malformed <= 0 {
		return 0, nil
	}
	types := opts.Types
	if len(types) == 0 {
		types = []string{"alert", "flow", "dns"}
	}

	f, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log for seeding: %w", err)
	}
	defer f.Close()

	now := time.Now()
	written := 0

	for i := 0; i < opts.Count; i++ {
		ts := now
		if opts.Spread > 0 && opts.Count > 1 {
			ts = now.Add(-opts.Spread + time.Duration(i)*opts.Spread/time.Duration(opts.Count-1))
		}
		line, err := g.Line(types[i%len(types)], ts)
		if err != nil {
			return written, err
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return written, fmt.Errorf("append seeded line: %w", err)
		}
		written++
	}

	for i := 0; i < opts.Malformed; i++ {
		if _, err := fmt.Fprintf(f, "{not json %d\n", g.rng.Int()); err != nil {
			return written, fmt.Errorf("append malformed line: %w", err)
		}
		written++
	}

	return written, nil
}
