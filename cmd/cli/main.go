package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/tillpoint/printbridge/internal/receipt"
)

const defaultServerURL = "http://localhost:9123"

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Server URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Server URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	args := flag.Args()
	var err error

	switch args[0] {
	case "discover":
		err = runDiscover(serverURL, false)
	case "rescan":
		err = runDiscover(serverURL, true)
	case "connect":
		if len(args) < 2 {
			err = fmt.Errorf("usage: connect <address> [transport]")
			break
		}
		transport := "network"
		if len(args) >= 3 {
			transport = args[2]
		}
		err = runConnect(serverURL, args[1], transport)
	case "disconnect":
		err = post(serverURL+"/printer/disconnect", map[string]interface{}{})
	case "status":
		err = runStatus(serverURL)
	case "print":
		if len(args) < 2 {
			err = fmt.Errorf("usage: print <file|->")
			break
		}
		err = runPrint(serverURL, args[1])
	case "preview":
		if len(args) < 2 {
			err = fmt.Errorf("usage: preview <file|->")
			break
		}
		err = runPreview(args[1])
	case "rename":
		if len(args) < 3 {
			err = fmt.Errorf("usage: rename <id> <name>")
			break
		}
		err = post(fmt.Sprintf("%s/printer/%s/name", serverURL, args[1]), map[string]interface{}{"name": args[2]})
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `printbridge CLI

Usage:
  printbridge-cli [flags] <command>

Flags:
  -s, -server <url>    Server URL (default: %s)

Commands:
  discover                     List reachable printers (cached)
  rescan                       Force a fresh sweep and list printers
  connect <address> [transport]  Connect (transport: network|bluetooth)
  disconnect                   Disconnect the current printer
  status                       Show the connected printer
  print <file|->               Print receipt text from a file or stdin
  preview <file|->             Render a print preview to the terminal
  rename <id> <name>           Set a custom printer name
`, defaultServerURL)
}

func runDiscover(serverURL string, rescan bool) error {
	var body []byte
	var err error
	if rescan {
		body, err = doPost(serverURL+"/printers/rescan", nil)
	} else {
		body, err = doGet(serverURL + "/printers")
	}
	if err != nil {
		return err
	}

	var resp struct {
		Printers []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			Transport   string `json:"transport"`
			Address     string `json:"address"`
		} `json:"printers"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}

	if len(resp.Printers) == 0 {
		fmt.Println("No printers found.")
		return nil
	}
	for _, p := range resp.Printers {
		fmt.Printf("%-36s  %-9s  %-21s  %s\n", p.ID, p.Transport, p.Address, p.DisplayName)
	}
	return nil
}

func runConnect(serverURL, address, transport string) error {
	return post(serverURL+"/printer/connect", map[string]interface{}{
		"address":   address,
		"transport": transport,
	})
}

func runStatus(serverURL string) error {
	body, err := doGet(serverURL + "/printer/current")
	if err != nil {
		return err
	}

	var resp struct {
		Printer *struct {
			DisplayName string `json:"display_name"`
			Transport   string `json:"transport"`
			Address     string `json:"address"`
		} `json:"printer"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}

	if resp.Printer == nil {
		fmt.Println("No printer connected.")
		return nil
	}
	fmt.Printf("Connected: %s [%s %s]\n", resp.Printer.DisplayName, resp.Printer.Transport, resp.Printer.Address)
	return nil
}

func runPrint(serverURL, path string) error {
	content, err := readInput(path)
	if err != nil {
		return err
	}
	return post(serverURL+"/print", map[string]interface{}{"content": string(content)})
}

// runPreview renders locally; no server round-trip needed.
func runPreview(path string) error {
	content, err := readInput(path)
	if err != nil {
		return err
	}
	marked := receipt.FormatForPrintPreview(string(content))
	fmt.Println(receipt.RenderPreview(marked))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func doGet(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func doPost(url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// post issues a POST and reports the server's success flag.
func post(url string, payload interface{}) error {
	body, err := doPost(url, payload)
	if err != nil {
		return err
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("%s", resp.Error)
		}
		return fmt.Errorf("request failed")
	}
	fmt.Println("OK")
	return nil
}
