package binaryCoder

import (
	"fmt"
	"sort"

	"github.com/i5heu/pinforest/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// Wire layout, protobuf compatible:
//
//	message Mapping { repeated Entry entries = 1; }
//	message Entry   { string key = 1; bytes value = 2; }
//	message Record  { string id = 1; repeated Link links = 2; string kind = 3; }
//	message Link    { string target = 1; string name = 2; uint64 size = 3; }
const (
	mappingEntries protowire.Number = 1

	entryKey   protowire.Number = 1
	entryValue protowire.Number = 2

	recordID    protowire.Number = 1
	recordLinks protowire.Number = 2
	recordKind  protowire.Number = 3

	linkTarget protowire.Number = 1
	linkName   protowire.Number = 2
	linkSize   protowire.Number = 3
)

// MappingToByte encodes a string keyed mapping. Keys are written in sorted
// order so equal mappings encode to equal bytes.
func MappingToByte(m map[string][]byte) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []byte
	for _, k := range keys {
		var entry []byte
		entry = protowire.AppendTag(entry, entryKey, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, entryValue, protowire.BytesType)
		entry = protowire.AppendBytes(entry, m[k])

		out = protowire.AppendTag(out, mappingEntries, protowire.BytesType)
		out = protowire.AppendBytes(out, entry)
	}
	return out
}

func ByteToMapping(b []byte) (map[string][]byte, error) {
	m := make(map[string][]byte)
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num != mappingEntries || typ != protowire.BytesType {
			return skipField(num, typ, field)
		}
		entry, n := protowire.ConsumeBytes(field)
		if n < 0 {
			return n, nil
		}
		key, value, err := decodeEntry(entry)
		if err != nil {
			return 0, err
		}
		m[key] = value
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error decoding mapping: %w", err)
	}
	return m, nil
}

func decodeEntry(b []byte) (string, []byte, error) {
	var key string
	var value []byte
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == entryKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			key = v
			return n, nil
		case num == entryValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(field)
			value = append([]byte(nil), v...)
			return n, nil
		default:
			return skipField(num, typ, field)
		}
	})
	return key, value, err
}

func RecordToByte(rec types.ObjectRecord) []byte {
	var out []byte
	out = protowire.AppendTag(out, recordID, protowire.BytesType)
	out = protowire.AppendString(out, rec.ID.String())

	for _, l := range rec.Links {
		var link []byte
		link = protowire.AppendTag(link, linkTarget, protowire.BytesType)
		link = protowire.AppendString(link, l.Target.String())
		link = protowire.AppendTag(link, linkName, protowire.BytesType)
		link = protowire.AppendString(link, l.Name)
		link = protowire.AppendTag(link, linkSize, protowire.VarintType)
		link = protowire.AppendVarint(link, l.Size)

		out = protowire.AppendTag(out, recordLinks, protowire.BytesType)
		out = protowire.AppendBytes(out, link)
	}

	if rec.Kind != "" {
		out = protowire.AppendTag(out, recordKind, protowire.BytesType)
		out = protowire.AppendString(out, rec.Kind)
	}
	return out
}

func ByteToRecord(b []byte) (types.ObjectRecord, error) {
	var rec types.ObjectRecord
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == recordID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			rec.ID = types.ContentID(v)
			return n, nil
		case num == recordKind && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			rec.Kind = v
			return n, nil
		case num == recordLinks && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(field)
			if n < 0 {
				return n, nil
			}
			link, err := decodeLink(v)
			if err != nil {
				return 0, err
			}
			rec.Links = append(rec.Links, link)
			return n, nil
		default:
			return skipField(num, typ, field)
		}
	})
	if err != nil {
		return types.ObjectRecord{}, fmt.Errorf("error decoding record: %w", err)
	}
	if rec.ID == "" {
		return types.ObjectRecord{}, fmt.Errorf("error decoding record: missing id")
	}
	return rec, nil
}

func decodeLink(b []byte) (types.Link, error) {
	var link types.Link
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == linkTarget && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			link.Target = types.ContentID(v)
			return n, nil
		case num == linkName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			link.Name = v
			return n, nil
		case num == linkSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(field)
			link.Size = v
			return n, nil
		default:
			return skipField(num, typ, field)
		}
	})
	return link, err
}

// walkFields calls fn for every field in b. fn returns the number of bytes
// it consumed from field, or a negative protowire error code.
func walkFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
	return protowire.ConsumeFieldValue(num, typ, field), nil
}
