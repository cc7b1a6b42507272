// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Key names one of the record keys the pipeline requires.
type Key uint8

// Required record keys.
const (
	KeyUserWallet Key = 1 << iota
	KeyTxHash
	KeyAction
	KeyTimestamp
	KeyAmount
	KeyAssetPriceUSD
)

// RequiredKeys lists every key a raw event is expected to carry.
var RequiredKeys = []Key{KeyUserWallet, KeyTxHash, KeyAction, KeyTimestamp, KeyAmount, KeyAssetPriceUSD}

// String returns the flattened key path, e.g. "actionData.amount".
func (k Key) String() string {
	switch k {
	case KeyUserWallet:
		return "userWallet"
	case KeyTxHash:
		return "txHash"
	case KeyAction:
		return "action"
	case KeyTimestamp:
		return "timestamp"
	case KeyAmount:
		return "actionData.amount"
	case KeyAssetPriceUSD:
		return "actionData.assetPriceUSD"
	default:
		return fmt.Sprintf("key(%d)", uint8(k))
	}
}

// KeySet is a set of Keys.
type KeySet uint8

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool { return s&KeySet(k) != 0 }

// Add returns the set with k included.
func (s KeySet) Add(k Key) KeySet { return s | KeySet(k) }

// Scalar holds a JSON string or number verbatim. Coercion to a numeric value
// happens in the normalizer, so a malformed value only drops its own record.
type Scalar string

// UnmarshalJSON accepts a JSON string, number, or null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	default:
		*s = Scalar(data)
	}
	return nil
}

// String returns the trimmed text of the scalar.
func (s Scalar) String() string { return strings.TrimSpace(string(s)) }

// ActionData is the nested payload of a lending-protocol event.
type ActionData struct {
	Amount        Scalar `json:"amount"`
	AssetPriceUSD Scalar `json:"assetPriceUSD"`
}

// RawEvent is one record of the upstream transaction export.
//
// Missing is populated only when the event is decoded from JSON; a literal
// RawEvent is treated as carrying every key.
type RawEvent struct {
	UserWallet string     `json:"userWallet"`
	TxHash     string     `json:"txHash"`
	Action     string     `json:"action"`
	Timestamp  Scalar     `json:"timestamp"`
	ActionData ActionData `json:"actionData"`

	Missing KeySet `json:"-"`
}

// UnmarshalJSON decodes a record and records which required keys are absent.
// Unknown keys are ignored.
func (e *RawEvent) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = RawEvent{}

	text := func(key Key, name string, dst *string) error {
		raw, ok := fields[name]
		if !ok {
			e.Missing = e.Missing.Add(key)
			return nil
		}
		var sc Scalar
		if err := sc.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = string(sc)
		return nil
	}
	if err := text(KeyUserWallet, "userWallet", &e.UserWallet); err != nil {
		return err
	}
	if err := text(KeyTxHash, "txHash", &e.TxHash); err != nil {
		return err
	}
	if err := text(KeyAction, "action", &e.Action); err != nil {
		return err
	}

	if raw, ok := fields["timestamp"]; ok {
		if err := e.Timestamp.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
	} else {
		e.Missing = e.Missing.Add(KeyTimestamp)
	}

	var nested map[string]json.RawMessage
	if raw, ok := fields["actionData"]; ok {
		// a non-object actionData counts as absent nested keys
		_ = json.Unmarshal(raw, &nested)
	}
	if raw, ok := nested["amount"]; ok {
		if err := e.ActionData.Amount.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("actionData.amount: %w", err)
		}
	} else {
		e.Missing = e.Missing.Add(KeyAmount)
	}
	if raw, ok := nested["assetPriceUSD"]; ok {
		if err := e.ActionData.AssetPriceUSD.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("actionData.assetPriceUSD: %w", err)
		}
	} else {
		e.Missing = e.Missing.Add(KeyAssetPriceUSD)
	}
	return nil
}

// Event is a normalized event with its USD value derived.
type Event struct {
	Wallet    string
	TxHash    string
	Action    string
	AmountUSD float64
	Timestamp float64 // seconds since epoch
}
