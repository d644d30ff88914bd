// Command callsim simulates a phone call against a running voiceline
// server by posting webhook turns and printing the TwiML replies.
//
// Usage:
//
//	go run ./cmd/callsim -url http://localhost:8080
//
// Then type turns at the prompt: a bare digit is sent as Digits,
// anything else as SpeechResult. An empty first line simulates the
// initial ring.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
)

func main() {
	base := flag.String("url", "http://localhost:8080", "server base URL")
	flag.Parse()

	callSID := "SIM" + uuid.New().String()
	fmt.Printf("Simulating call %s against %s\n", callSID, *base)
	fmt.Println("Type a digit, a sentence, or press enter for the initial turn. 'confirm:' prefix targets the confirmation endpoint. Ctrl-D quits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		endpoint := *base + "/twilio/voice"
		if rest, ok := strings.CutPrefix(line, "confirm:"); ok {
			endpoint = *base + "/twilio/confirm-end"
			line = strings.TrimSpace(rest)
		}

		form := url.Values{"CallSid": {callSID}}
		if len(line) == 1 && line >= "0" && line <= "9" {
			form.Set("Digits", line)
		} else if line != "" {
			form.Set("SpeechResult", line)
		}

		resp, err := http.PostForm(endpoint, form)
		if err != nil {
			fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("[%d] %s\n", resp.StatusCode, body)
	}
}
