package proto

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request field names.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldID       = "id"
	FieldContent  = "content"
)

// Note is the wire shape of one note in ListNotes responses.
type Note struct {
	ID      int64
	Content string
}

func CredentialsRequest(username, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUsername: structpb.NewStringValue(username),
		FieldPassword: structpb.NewStringValue(password),
	}}
}

func ContentRequest(content string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldContent: structpb.NewStringValue(content),
	}}
}

func NoteRequest(id int64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID: structpb.NewNumberValue(float64(id)),
	}}
}

func EditRequest(id int64, content string) *structpb.Struct {
	s := NoteRequest(id)
	s.Fields[FieldContent] = structpb.NewStringValue(content)
	return s
}

// String returns a string field. A missing field reads as "".
func String(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", name)
	}
	return sv.StringValue, nil
}

// Int64 returns a whole-number field. JSON numbers are doubles, so values
// beyond 2^53 are rejected.
func Int64(s *structpb.Struct, name string) (int64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("field %q is required", name)
	}
	return toInt64(v, name)
}

func toInt64(v *structpb.Value, name string) (int64, error) {
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q is not a number", name)
	}
	f := nv.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("field %q is not a whole number", name)
	}
	return int64(f), nil
}

func EncodeNotes(notes []Note) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(notes))
	for _, n := range notes {
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			FieldID:      structpb.NewNumberValue(float64(n.ID)),
			FieldContent: structpb.NewStringValue(n.Content),
		}}))
	}
	return &structpb.ListValue{Values: values}
}

func DecodeNotes(list *structpb.ListValue) ([]Note, error) {
	notes := make([]Note, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("note %d is not an object", i)
		}
		id, err := Int64(s, FieldID)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		content, err := String(s, FieldContent)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		notes = append(notes, Note{ID: id, Content: content})
	}
	return notes, nil
}
