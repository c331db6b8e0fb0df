/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package backend

import (
	"context"
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/engine"
	"dirpx.dev/serx/resolver"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Shape describes how a format lays out members and polymorphic positions.
type Shape struct {
	// Tag is the struct tag that renames or skips members.
	Tag string
	// TypeKey holds the type name of a polymorphic value.
	TypeKey string
	// ValueKey holds the payload of a polymorphic value that is not an object,
	// and scalar document roots.
	ValueKey string
	// Inline writes TypeKey among the members of object payloads instead of
	// wrapping them under ValueKey.
	Inline bool
	// DocumentRoot requires the root to be an object: other roots are
	// wrapped under ValueKey.
	DocumentRoot bool
}

// walker converts values to format-neutral trees and back under one
// configuration's contracts.
type walker struct {
	table   *Table
	cfg     *engine.Configuration
	adapter *resolver.Adapter
	shape   Shape
	fields  fieldCache
}

func (w *walker) encode(ctx context.Context, v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	rt := v.Type()
	switch rt.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return w.encodeDynamic(ctx, v.Elem(), rt)
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return w.encode(ctx, v.Elem())
	}

	c, _ := w.table.Contract(rt)
	if c != nil && c.Converter != nil {
		return c.Converter.Encode(v)
	}
	if m, ok := textMarshaler(v); ok {
		b, err := m.MarshalText()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}

	switch rt.Kind() {
	case reflect.Struct:
		return w.encodeStruct(ctx, v, c)
	case reflect.Map:
		return w.encodeMap(ctx, v)
	case reflect.Slice, reflect.Array:
		if rt.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		if rt.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return b, nil
		}
		out := make([]any, v.Len())
		for i := range out {
			e, err := w.encode(ctx, v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = e
		}
		return out, nil
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
}

func (w *walker) encodeStruct(ctx context.Context, v reflect.Value, c *Contract) (any, error) {
	rt := v.Type()
	fs := w.fields.of(rt)
	out := make(Object, 0, len(fs))
	for _, f := range fs {
		if !c.Allows(f.name, f.goName) {
			continue
		}
		fv, err := v.FieldByIndexErr(f.index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			continue
		}
		e, err := w.encode(ctx, fv)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rt.Name(), f.goName, err)
		}
		out = append(out, Field{Key: f.name, Value: e})
	}
	return out, nil
}

func (w *walker) encodeMap(ctx context.Context, v reflect.Value) (any, error) {
	if v.IsNil() {
		return nil, nil
	}
	out := make(Object, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := mapKey(iter.Key())
		if err != nil {
			return nil, err
		}
		e, err := w.encode(ctx, iter.Value())
		if err != nil {
			return nil, fmt.Errorf("[%s]: %w", k, err)
		}
		out = append(out, Field{Key: k, Value: e})
	}
	out.sortByKey()
	return out, nil
}

// encodeDynamic writes the value held by a polymorphic position together
// with its type name. Unnamed and predeclared values stored in an empty
// interface are written plainly. A nil static type forces the type name.
func (w *walker) encodeDynamic(ctx context.Context, v reflect.Value, static reflect.Type) (any, error) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	rt := v.Type()
	if static != nil && static.NumMethod() == 0 && (rt.Name() == "" || rt.PkgPath() == "") {
		return w.encode(ctx, v)
	}
	if rt.Name() == "" {
		return nil, fmt.Errorf("%w: unnamed type %s in a polymorphic position", ErrUnsupportedType, rt)
	}
	t := w.table.ts.Of(rt)
	if err := w.cfg.Admit(t, apis.Serialize); err != nil {
		return nil, err
	}
	tree, err := w.encode(ctx, v)
	if err != nil {
		return nil, err
	}
	return w.wrap(w.adapter.TypeName(w.cfg, t), tree), nil
}

func (w *walker) wrap(name string, tree any) any {
	if obj, ok := tree.(Object); ok && w.shape.Inline {
		return append(Object{{Key: w.shape.TypeKey, Value: name}}, obj...)
	}
	return Object{{Key: w.shape.TypeKey, Value: name}, {Key: w.shape.ValueKey, Value: tree}}
}

func (w *walker) decode(ctx context.Context, raw any, v reflect.Value) error {
	rt := v.Type()
	if rt.Kind() == reflect.Interface {
		return w.decodeDynamic(ctx, raw, v)
	}
	if raw == nil {
		v.Set(reflect.Zero(rt))
		return nil
	}
	if rt.Kind() == reflect.Pointer {
		p := reflect.New(rt.Elem())
		if err := w.decode(ctx, raw, p.Elem()); err != nil {
			return err
		}
		v.Set(p)
		return nil
	}

	c, _ := w.table.Contract(rt)
	if c != nil && c.Converter != nil {
		return c.Converter.Decode(raw, v)
	}
	if s, ok := raw.(string); ok && v.CanAddr() && reflect.PointerTo(rt).Implements(textUnmarshalerType) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}

	switch rt.Kind() {
	case reflect.Struct:
		return w.decodeStruct(ctx, raw, v, c)
	case reflect.Map:
		return w.decodeMap(ctx, raw, v)
	case reflect.Slice, reflect.Array:
		return w.decodeList(ctx, raw, v)
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return shapeError(raw, rt)
		}
		v.SetString(s)
		return nil
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return shapeError(raw, rt)
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toInt(raw)
		if !ok || v.OverflowInt(n) {
			return shapeError(raw, rt)
		}
		v.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := toUint(raw)
		if !ok || v.OverflowUint(n) {
			return shapeError(raw, rt)
		}
		v.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := toFloat(raw)
		if !ok {
			return shapeError(raw, rt)
		}
		v.SetFloat(f)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
}

func (w *walker) decodeStruct(ctx context.Context, raw any, v reflect.Value, c *Contract) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return shapeError(raw, v.Type())
	}
	for _, f := range w.fields.of(v.Type()) {
		if !c.Allows(f.name, f.goName) {
			continue
		}
		fr, ok := m[f.name]
		if !ok {
			continue
		}
		if err := w.decode(ctx, fr, fieldByIndexAlloc(v, f.index)); err != nil {
			return fmt.Errorf("%s.%s: %w", v.Type().Name(), f.goName, err)
		}
	}
	return nil
}

func (w *walker) decodeMap(ctx context.Context, raw any, v reflect.Value) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return shapeError(raw, v.Type())
	}
	rt := v.Type()
	out := reflect.MakeMapWithSize(rt, len(m))
	for k, er := range m {
		kv, err := parseKey(k, rt.Key())
		if err != nil {
			return err
		}
		ev := reflect.New(rt.Elem()).Elem()
		if err := w.decode(ctx, er, ev); err != nil {
			return fmt.Errorf("[%s]: %w", k, err)
		}
		out.SetMapIndex(kv, ev)
	}
	v.Set(out)
	return nil
}

func (w *walker) decodeList(ctx context.Context, raw any, v reflect.Value) error {
	rt := v.Type()
	if rt.Elem().Kind() == reflect.Uint8 {
		b, ok := toBytes(raw)
		if !ok {
			return shapeError(raw, rt)
		}
		if rt.Kind() == reflect.Slice {
			v.Set(reflect.MakeSlice(rt, len(b), len(b)))
		}
		reflect.Copy(v, reflect.ValueOf(b))
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return shapeError(raw, rt)
	}
	if rt.Kind() == reflect.Slice {
		v.Set(reflect.MakeSlice(rt, len(list), len(list)))
	}
	for i := 0; i < v.Len() && i < len(list); i++ {
		if err := w.decode(ctx, list[i], v.Index(i)); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

// decodeDynamic fills a polymorphic position. The type name is resolved
// through the adapter under the configuration scoped in ctx.
func (w *walker) decodeDynamic(ctx context.Context, raw any, v reflect.Value) error {
	rt := v.Type()
	if raw == nil {
		v.Set(reflect.Zero(rt))
		return nil
	}
	m, _ := raw.(map[string]any)
	name, ok := m[w.shape.TypeKey].(string)
	if !ok {
		if rt.NumMethod() == 0 {
			v.Set(reflect.ValueOf(raw))
			return nil
		}
		return fmt.Errorf("%w: decoding %s", ErrMissingDiscriminator, rt)
	}

	t, err := w.adapter.ResolveType(ctx, name)
	if err != nil {
		return err
	}
	ct, ok := w.table.ts.Reflect(t)
	if !ok {
		return fmt.Errorf("%w: %s has no runtime type", ErrIncompatibleType, t.FullName())
	}
	var holder, target reflect.Value
	switch {
	case ct.AssignableTo(rt):
		holder = reflect.New(ct).Elem()
		target = holder
	case reflect.PointerTo(ct).AssignableTo(rt):
		holder = reflect.New(ct)
		target = holder.Elem()
	default:
		return fmt.Errorf("%w: %s into %s", ErrIncompatibleType, ct, rt)
	}
	if err := w.decode(ctx, w.payload(m), target); err != nil {
		return err
	}
	v.Set(holder)
	return nil
}

func (w *walker) payload(m map[string]any) any {
	if p, ok := m[w.shape.ValueKey]; ok && (!w.shape.Inline || len(m) == 2) {
		return p
	}
	if !w.shape.Inline {
		return nil
	}
	out := make(map[string]any, len(m)-1)
	for k, v := range m {
		if k != w.shape.TypeKey {
			out[k] = v
		}
	}
	return out
}

func textMarshaler(v reflect.Value) (encoding.TextMarshaler, bool) {
	rt := v.Type()
	if rt.Implements(textMarshalerType) {
		return v.Interface().(encoding.TextMarshaler), true
	}
	if v.CanAddr() && reflect.PointerTo(rt).Implements(textMarshalerType) {
		return v.Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if m, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		return string(b), err
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: map key %s", ErrUnsupportedType, k.Type())
}

func parseKey(s string, kt reflect.Type) (reflect.Value, error) {
	kv := reflect.New(kt).Elem()
	if kt.Kind() == reflect.String {
		kv.SetString(s)
		return kv, nil
	}
	if reflect.PointerTo(kt).Implements(textUnmarshalerType) {
		err := kv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
		return kv, err
	}
	switch kt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, kt.Bits())
		if err != nil {
			return kv, shapeError(s, kt)
		}
		kv.SetInt(n)
		return kv, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, kt.Bits())
		if err != nil {
			return kv, shapeError(s, kt)
		}
		kv.SetUint(n)
		return kv, nil
	}
	return kv, fmt.Errorf("%w: map key %s", ErrUnsupportedType, kt)
}

func toInt(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		return int64(n), n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64
	}
	return 0, false
}

func toUint(raw any) (uint64, bool) {
	switch n := raw.(type) {
	case uint64:
		return n, true
	case int64:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case int:
		return uint64(n), n >= 0
	case float64:
		return uint64(n), n == math.Trunc(n) && n >= 0 && n < math.MaxUint64
	}
	return 0, false
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toBytes(raw any) ([]byte, bool) {
	switch b := raw.(type) {
	case []byte:
		return b, true
	case string:
		out, err := base64.StdEncoding.DecodeString(b)
		return out, err == nil
	}
	return nil, false
}
