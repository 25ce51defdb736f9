// Package main provides a CI-friendly smoke test for the uptime API.
//
// It validates, against a running server:
//   - account registration
//   - login (token issuance)
//   - authenticated account fetch
//   - check creation + back-reference on the account
//   - token extension
//   - check deletion + back-reference removal
//   - account deletion
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const tokenHeader = "token"

type client struct {
	base string
	http *http.Client
	tok  string
}

func (c *client) do(method, path string, body any, dst any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return 0, err
	}
	if c.tok != "" {
		req.Header.Set(tokenHeader, c.tok)
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, err
	}
	if dst != nil {
		if err := json.Unmarshal(data, dst); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding %q: %w", data, err)
		}
	}
	return resp.StatusCode, nil
}

func main() {
	base := flag.String("base", "http://127.0.0.1:3000", "server base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	c := &client{
		base: *base,
		http: &http.Client{Timeout: *timeout},
	}

	// A random phone per run keeps the smoke test re-runnable against a
	// server with persistent data.
	phone := fmt.Sprintf("019%08d", rand.New(rand.NewSource(time.Now().UnixNano())).Intn(100000000))
	password := "smoke-test-password"

	fail := func(step string, err error) {
		fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", step, err)
		os.Exit(1)
	}
	expect := func(step string, status, want int) {
		if status != want {
			fail(step, fmt.Errorf("status %d, want %d", status, want))
		}
		fmt.Printf("ok   %s\n", step)
	}

	status, err := c.do(http.MethodPost, "/user", map[string]any{
		"firstName":     "Smoke",
		"lastName":      "Test",
		"phone":         phone,
		"password":      password,
		"termsAccepted": true,
	}, nil)
	if err != nil {
		fail("register", err)
	}
	expect("register", status, http.StatusOK)

	var tok struct {
		ID string `json:"id"`
	}
	status, err = c.do(http.MethodPost, "/token", map[string]any{
		"phone":    phone,
		"password": password,
	}, &tok)
	if err != nil {
		fail("login", err)
	}
	expect("login", status, http.StatusOK)
	if len(tok.ID) != 20 {
		fail("login", fmt.Errorf("token id %q, want 20 chars", tok.ID))
	}
	c.tok = tok.ID

	var acct struct {
		CheckIDs []string `json:"checkIds"`
	}
	status, err = c.do(http.MethodGet, "/user?phone="+phone, nil, &acct)
	if err != nil {
		fail("fetch account", err)
	}
	expect("fetch account", status, http.StatusOK)

	var check struct {
		ID string `json:"id"`
	}
	status, err = c.do(http.MethodPost, "/check", map[string]any{
		"protocol":       "https",
		"url":            "https://example.com/health",
		"method":         "GET",
		"successCodes":   []int{200},
		"timeoutSeconds": 3,
	}, &check)
	if err != nil {
		fail("create check", err)
	}
	expect("create check", status, http.StatusOK)

	status, err = c.do(http.MethodGet, "/user?phone="+phone, nil, &acct)
	if err != nil {
		fail("verify back-reference", err)
	}
	if status != http.StatusOK || len(acct.CheckIDs) != 1 || acct.CheckIDs[0] != check.ID {
		fail("verify back-reference", fmt.Errorf("checkIds %v, want [%s]", acct.CheckIDs, check.ID))
	}
	fmt.Println("ok   verify back-reference")

	status, err = c.do(http.MethodPut, "/token", map[string]any{
		"id":     tok.ID,
		"extend": true,
	}, nil)
	if err != nil {
		fail("extend token", err)
	}
	expect("extend token", status, http.StatusOK)

	status, err = c.do(http.MethodDelete, "/check?id="+check.ID, nil, nil)
	if err != nil {
		fail("delete check", err)
	}
	expect("delete check", status, http.StatusOK)

	status, err = c.do(http.MethodGet, "/user?phone="+phone, nil, &acct)
	if err != nil {
		fail("verify back-reference removal", err)
	}
	if status != http.StatusOK || len(acct.CheckIDs) != 0 {
		fail("verify back-reference removal", fmt.Errorf("checkIds %v, want empty", acct.CheckIDs))
	}
	fmt.Println("ok   verify back-reference removal")

	status, err = c.do(http.MethodDelete, "/user?phone="+phone, nil, nil)
	if err != nil {
		fail("delete account", err)
	}
	expect("delete account", status, http.StatusOK)

	fmt.Println("PASS")
}
