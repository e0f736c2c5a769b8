package generativeAI

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse is returned when the provider answered 2xx without usable content.
var ErrEmptyResponse = errors.New("ai provider returned an empty completion")

type ErrorKind string

const (
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindInvalidKey          ErrorKind = "invalid_key"
	KindRateLimited         ErrorKind = "rate_limited"
	KindUnavailable         ErrorKind = "unavailable"
	KindOther               ErrorKind = "other"
)

// ProviderHTTPError is a non-2xx answer from the provider. Cause is safe to show to users.
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	Kind       ErrorKind
	Cause      string
	Body       string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("%s responded %d (%s): %s", e.Provider, e.StatusCode, e.Kind, e.Cause)
}

// NetworkError covers connection failures and timeouts, where no HTTP status was received.
type NetworkError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s request timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

const maxErrorBodyChars = 200

func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusPaymentRequired:
		return KindInsufficientBalance
	case http.StatusUnauthorized:
		return KindInvalidKey
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindOther
	}
}

type providerErrorBody struct {
	Error *struct {
		Message *string         `json:"message"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
	Message *string `json:"message"`
}

// ParseProviderError turns a non-2xx provider answer into a classified error.
func ParseProviderError(provider string, status int, body []byte) *ProviderHTTPError {
	return &ProviderHTTPError{
		Provider:   provider,
		StatusCode: status,
		Kind:       classifyStatus(status),
		Cause:      describeProviderError(status, body),
		Body:       string(body),
	}
}

func describeProviderError(status int, body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return fmt.Sprintf("AI API调用失败: %d", status)
	}

	var parsed providerErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if e := parsed.Error; e != nil {
			if e.Message != nil {
				return describeMessage(status, *e.Message)
			}
			if code := rawScalar(e.Code); code != "" {
				return fmt.Sprintf("AI服务错误 (%s): 未知错误", code)
			}
		}
		if parsed.Message != nil {
			return "AI服务错误: " + *parsed.Message
		}
	}

	short := []rune(raw)
	if len(short) > maxErrorBodyChars {
		return fmt.Sprintf("AI API调用失败 (%d): %s...", status, string(short[:maxErrorBodyChars]))
	}
	return fmt.Sprintf("AI API调用失败 (%d): %s", status, raw)
}

// describeMessage special-cases the statuses users can act on.
func describeMessage(status int, msg string) string {
	switch status {
	case http.StatusPaymentRequired:
		if strings.Contains(msg, "Insufficient Balance") || strings.Contains(msg, "余额") {
			return "AI服务余额不足，请充值后重试。如需帮助，请联系管理员。"
		}
		return "AI服务账户余额不足: " + msg
	case http.StatusUnauthorized:
		return "AI服务API密钥无效，请检查配置。"
	case http.StatusTooManyRequests:
		return "AI服务请求过于频繁，请稍后再试。"
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return "AI服务暂时不可用，请稍后再试。"
	}
	return "AI服务错误: " + msg
}

// rawScalar renders a JSON string or number without quotes.
func rawScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
