package gemini

import (
	"testing"
	"time"
)

func TestClientConfigKeepsDefaultHTTPClient(t *testing.T) {
	cc, err := clientConfig(Config{APIKey: " key ", BaseURL: "http://localhost:9999"})
	if err != nil {
		t.Fatalf("clientConfig: %v", err)
	}
	if cc.HTTPClient != nil {
		t.Fatalf("expected SDK default HTTP client, got timeout=%s", cc.HTTPClient.Timeout)
	}
	if cc.APIKey != "key" || cc.HTTPOptions.BaseURL != "http://localhost:9999/" {
		t.Fatalf("config: key=%q base=%q", cc.APIKey, cc.HTTPOptions.BaseURL)
	}

	cc, err = clientConfig(Config{APIKey: "key", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("clientConfig: %v", err)
	}
	if cc.HTTPClient == nil || cc.HTTPClient.Timeout != 5*time.Second {
		t.Fatalf("expected explicit 5s timeout, got %+v", cc.HTTPClient)
	}

	if _, err := clientConfig(Config{APIKey: "  "}); err == nil {
		t.Fatal("expected error for missing key")
	}
}
