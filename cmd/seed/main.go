// Command seed writes a RuleSet config record into the store for one
// identifier, or the default fallback. It is an external collaborator,
// not part of the admission path: admitgate's core never mutates
// config, so this is the "seeding or admin tooling" populating it out
// of band.
//
// Usage:
//
//	seed -redis localhost:6379 -id acme-corp -rules 100:60
//	seed -redis localhost:6379 -default -rules 10:1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	admitgate "github.com/corvusdev/admitgate"

	"github.com/redis/go-redis/v9"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "redis address")
	identifier := flag.String("id", "", "application identifier to seed (omit with -default)")
	useDefault := flag.Bool("default", false, "seed the default fallback config instead of -id")
	rules := flag.String("rules", "", "comma-separated points:duration pairs, e.g. 100:60,1000:3600")
	flag.Parse()

	if *identifier == "" && !*useDefault {
		fmt.Fprintln(os.Stderr, "seed: one of -id or -default is required")
		os.Exit(2)
	}
	if *rules == "" {
		fmt.Fprintln(os.Stderr, "seed: -rules is required")
		os.Exit(2)
	}

	ruleSet, err := parseRules(*rules)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if err := ruleSet.Validate(); err != nil {
		log.Fatalf("seed: invalid rule set: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	key := "rateLimitConfig:default"
	if !*useDefault {
		key = "rateLimitConfig:" + admitgate.NormalizeIdentifier(*identifier)
	}

	payload, err := json.Marshal(struct {
		Rules admitgate.RuleSet `json:"rules"`
	}{Rules: ruleSet})
	if err != nil {
		log.Fatalf("seed: marshal rules: %v", err)
	}

	if err := client.Set(ctx, key, string(payload), 0).Err(); err != nil {
		log.Fatalf("seed: write %s: %v", key, err)
	}

	fmt.Printf("seeded %s with %d rule(s)\n", key, len(ruleSet))
}

func parseRules(spec string) (admitgate.RuleSet, error) {
	parts := strings.Split(spec, ",")
	rules := make(admitgate.RuleSet, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pair := strings.SplitN(p, ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("malformed rule %q, want points:duration", p)
		}
		var points, duration int64
		if _, err := fmt.Sscanf(pair[0], "%d", &points); err != nil {
			return nil, fmt.Errorf("malformed points in %q: %w", p, err)
		}
		if _, err := fmt.Sscanf(pair[1], "%d", &duration); err != nil {
			return nil, fmt.Errorf("malformed duration in %q: %w", p, err)
		}
		rules = append(rules, admitgate.RateLimitRule{Points: points, Duration: duration})
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules parsed from %q", spec)
	}
	return rules, nil
}
