package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	synchub "characterhub/internal/sync"
)

// sync-client tails the TCP change feed, reconnecting on disconnect.
func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP change feed address")
	only := flag.String("type", "", "only print events of this type, e.g. character.delete")
	flag.Parse()

	for {
		if err := run(*addr, *only); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second)
	}
}

func run(addr, only string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()

		var ev synchub.CharacterEvent
		if err := json.Unmarshal(line, &ev); err != nil || ev.ID == 0 {
			// welcome banner or something we don't know
			if only == "" {
				fmt.Println(string(line))
			}
			continue
		}
		if only != "" && ev.Type != only {
			continue
		}

		fmt.Printf("%s  %-17s id=%d source=%s name=%q", ev.At.Format(time.RFC3339), ev.Type, ev.ID, ev.Source, ev.Name)
		if ev.DeletedAt != "" {
			fmt.Printf(" deleted_at=%s", ev.DeletedAt)
		}
		fmt.Println()
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}
