package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyKind tags the form of an AnswerKey.
type KeyKind uint8

const (
	KeyNone KeyKind = iota
	KeyIndex
	KeyLabel
)

// AnswerKey identifies one option: either a numeric index into an indexed
// option list or a short label of a keyed option map. Two keys are equal only
// when both kind and value match, so Index(1) never equals Label("1").
type AnswerKey struct {
	kind  KeyKind
	index int
	label string
}

func IndexKey(i int) AnswerKey { return AnswerKey{kind: KeyIndex, index: i} }

func LabelKey(s string) AnswerKey { return AnswerKey{kind: KeyLabel, label: s} }

func (k AnswerKey) Kind() KeyKind { return k.kind }

func (k AnswerKey) IsZero() bool { return k.kind == KeyNone }

func (k AnswerKey) Index() (int, bool) { return k.index, k.kind == KeyIndex }

func (k AnswerKey) Label() (string, bool) { return k.label, k.kind == KeyLabel }

func (k AnswerKey) String() string {
	switch k.kind {
	case KeyIndex:
		return strconv.Itoa(k.index)
	case KeyLabel:
		return strconv.Quote(k.label)
	default:
		return "<none>"
	}
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	switch k.kind {
	case KeyIndex:
		return json.Marshal(k.index)
	case KeyLabel:
		return json.Marshal(k.label)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON keeps the JSON type: numbers become index keys, strings label keys.
func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = AnswerKey{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = LabelKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer key: %w", err)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return fmt.Errorf("answer key %s is not an integer index", n)
	}
	*k = IndexKey(i)
	return nil
}

// OptionsKind tags the representation of a question's options.
type OptionsKind uint8

const (
	OptionsNone OptionsKind = iota
	OptionsIndexed
	OptionsKeyed
)

// Options is either an ordered list addressed by index or a map addressed by
// label. Indexed options answer to IndexKey, keyed options to LabelKey.
type Options struct {
	kind  OptionsKind
	list  []string
	keyed map[string]string
}

// Choice is one option as presented: Label is what a user types or sees.
type Choice struct {
	Key   AnswerKey `json:"key"`
	Label string    `json:"label"`
	Text  string    `json:"text"`
}

func IndexedOptions(texts ...string) Options {
	return Options{kind: OptionsIndexed, list: append([]string(nil), texts...)}
}

func KeyedOptions(m map[string]string) Options {
	keyed := make(map[string]string, len(m))
	for k, v := range m {
		keyed[k] = v
	}
	return Options{kind: OptionsKeyed, keyed: keyed}
}

func (o Options) Kind() OptionsKind { return o.kind }

func (o Options) Len() int {
	if o.kind == OptionsKeyed {
		return len(o.keyed)
	}
	return len(o.list)
}

// Choices lists options in display order. Keyed options sort by key.
func (o Options) Choices() []Choice {
	switch o.kind {
	case OptionsIndexed:
		out := make([]Choice, len(o.list))
		for i, text := range o.list {
			out[i] = Choice{Key: IndexKey(i), Label: positionLabel(i), Text: text}
		}
		return out
	case OptionsKeyed:
		keys := make([]string, 0, len(o.keyed))
		for k := range o.keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Choice, len(keys))
		for i, k := range keys {
			out[i] = Choice{Key: LabelKey(k), Label: k, Text: o.keyed[k]}
		}
		return out
	default:
		return nil
	}
}

// Contains reports whether key addresses one of the options.
func (o Options) Contains(key AnswerKey) bool {
	switch o.kind {
	case OptionsIndexed:
		i, ok := key.Index()
		return ok && i >= 0 && i < len(o.list)
	case OptionsKeyed:
		l, ok := key.Label()
		if !ok {
			return false
		}
		_, found := o.keyed[l]
		return found
	default:
		return false
	}
}

// KeyForLabel maps a typed display label ("b", "B", "2") to its answer key.
func (o Options) KeyForLabel(input string) (AnswerKey, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return AnswerKey{}, false
	}
	choices := o.Choices()
	for _, c := range choices {
		if c.Label == input {
			return c.Key, true
		}
	}
	for _, c := range choices {
		if strings.EqualFold(c.Label, input) {
			return c.Key, true
		}
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1].Key, true
	}
	return AnswerKey{}, false
}

func (o Options) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case OptionsIndexed:
		return json.Marshal(o.list)
	case OptionsKeyed:
		return json.Marshal(o.keyed)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts either a JSON array or a JSON object of strings.
func (o *Options) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = Options{}
		return nil
	}
	switch data[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("options list: %w", err)
		}
		*o = IndexedOptions(list...)
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("options map: %w", err)
		}
		*o = KeyedOptions(m)
	default:
		return fmt.Errorf("options must be an array or an object")
	}
	return nil
}

func positionLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}
