package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docvault/internal/infra/fingerprint"
)

func runDigest(args []string) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var inPath string
	fs.StringVar(&inPath, "in", "", "input file")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "digest requires --in")
		return 1
	}

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		return 1
	}
	defer f.Close()

	digest, err := fingerprint.NewService().Digest(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "digest: %v\n", err)
		return 1
	}
	fmt.Println(digest)
	return 0
}

func runLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var server, username, password string
	fs.StringVar(&server, "server", "http://localhost:8080", "server base url")
	fs.StringVar(&username, "username", "", "username")
	fs.StringVar(&password, "password", "", "password (defaults to DOCVAULT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if password == "" {
		password = os.Getenv("DOCVAULT_PASSWORD")
	}
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "login requires --username and a password")
		return 1
	}

	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := httpClient().Post(strings.TrimRight(server, "/")+"/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Fprintf(os.Stderr, "login request: %v\n", err)
		return 1
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "login failed: %s\n", strings.TrimSpace(string(body)))
		return 1
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		fmt.Fprintf(os.Stderr, "decode response: %v\n", err)
		return 1
	}
	fmt.Println(out.AccessToken)
	return 0
}

func runRegister(args []string) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var server, tokenStr, inPath, name string
	fs.StringVar(&server, "server", "http://localhost:8080", "server base url")
	fs.StringVar(&tokenStr, "token", "", "bearer token")
	fs.StringVar(&inPath, "in", "", "input file")
	fs.StringVar(&name, "name", "", "document name (defaults to the file name)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if tokenStr == "" || inPath == "" {
		fmt.Fprintln(os.Stderr, "register requires --token and --in")
		return 1
	}

	body, err := uploadRequest(server, "/v1/documents", tokenStr, inPath, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register: %v\n", err)
		return 1
	}
	fmt.Println(body)
	return 0
}

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var server, tokenStr, inPath, name string
	fs.StringVar(&server, "server", "http://localhost:8080", "server base url")
	fs.StringVar(&tokenStr, "token", "", "bearer token")
	fs.StringVar(&inPath, "in", "", "input file")
	fs.StringVar(&name, "name", "", "document name")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if tokenStr == "" || inPath == "" || name == "" {
		fmt.Fprintln(os.Stderr, "verify requires --token, --name, and --in")
		return 1
	}

	body, err := uploadRequest(server, "/v1/documents/"+name+"/verify", tokenStr, inPath, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		return 1
	}
	fmt.Println(body)

	var result struct {
		Outcome string `json:"outcome"`
	}
	if json.Unmarshal([]byte(body), &result) == nil {
		switch result.Outcome {
		case "AUTHENTIC", "AUTHENTIC_NO_SIGNATURE":
			return 0
		}
		return 2
	}
	return 0
}

// uploadRequest POSTs a file as multipart form data and returns the
// response body. Verify outcomes come back with a non-2xx status for
// unknown names, which is still a readable result, so only transport
// errors are fatal here.
func uploadRequest(server, path, tokenStr, inPath, name string) (string, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(inPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if name != "" {
		if err := mw.WriteField("name", name); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(server, "/")+path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokenStr)

	resp, err := httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
