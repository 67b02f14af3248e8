package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Posts a sample submission to a running relay and prints the response.
// Usage: go run scripts/post-sample.go [endpoint]
func main() {
	endpoint := "http://localhost:8080/api/telegram"
	if len(os.Args) > 1 {
		endpoint = os.Args[1]
	}

	submission := map[string]interface{}{
		"message": "<b>📝 Writing test submitted</b>\n\n" +
			"<b>Student:</b> Sample Student\n" +
			"<b>Task 1:</b> 162 words\n" +
			"<b>Task 2:</b> 271 words\n" +
			"<b>Duration:</b> 58:12\n" +
			"<b>Violations:</b> none",
		"studentName":    "Sample Student",
		"task1WordCount": 162,
		"task2WordCount": 271,
		"violations":     []string{},
		"duration":       "58:12",
	}

	body, err := json.Marshal(submission)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding submission: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error posting submission: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("POST %s -> %s\n", endpoint, resp.Status)
	fmt.Println(string(respBody))
}
