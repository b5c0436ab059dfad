package types

import "fmt"

// RecordPolicy decides whether record targets accept fields they do not declare.
type RecordPolicy uint8

const (
	RecordsDeclared RecordPolicy = iota // {| |} is closed, { } is open
	RecordsOpen
	RecordsClosed
)

func (p RecordPolicy) String() string {
	switch p {
	case RecordsOpen:
		return "open"
	case RecordsClosed:
		return "closed"
	}
	return "declared"
}

// ParseRecordPolicy accepts declared, open or closed.
func ParseRecordPolicy(s string) (RecordPolicy, error) {
	switch s {
	case "", "declared":
		return RecordsDeclared, nil
	case "open":
		return RecordsOpen, nil
	case "closed":
		return RecordsClosed, nil
	}
	return RecordsDeclared, fmt.Errorf("unknown record policy %q (want declared, open or closed)", s)
}

type Options struct {
	RecordPolicy RecordPolicy
}

// Assignable reports whether a value of type src may be stored where dst is
// expected.
func (in *Interner) Assignable(src, dst TypeID, opts Options) bool {
	c := assignCtx{in: in, opts: opts, seen: make(map[[2]TypeID]struct{})}
	return c.assignable(src, dst)
}

type assignCtx struct {
	in   *Interner
	opts Options
	seen map[[2]TypeID]struct{}
}

func (c *assignCtx) assignable(src, dst TypeID) bool {
	in := c.in
	src, dst = in.Resolve(src), in.Resolve(dst)
	if src == dst {
		return true
	}
	pair := [2]TypeID{src, dst}
	if _, ok := c.seen[pair]; ok {
		// a pair already on the stack: recursive types are assumed
		// compatible on re-entry
		return true
	}
	c.seen[pair] = struct{}{}
	defer delete(c.seen, pair)

	s, sok := in.Lookup(src)
	d, dok := in.Lookup(dst)
	if !sok || !dok {
		return false
	}
	switch s.Kind {
	case KindNever, KindError:
		return true
	}
	if d.Kind == KindError {
		return true
	}
	switch s.Kind {
	case KindUnion:
		for _, m := range in.Members(src) {
			if !c.assignable(m, dst) {
				return false
			}
		}
		return true
	case KindIntersection:
		if d.Kind == KindReadonly {
			return in.IsImmutable(src)
		}
		return c.assignable(in.Effective(src), dst)
	}

	switch d.Kind {
	case KindAny:
		return true
	case KindReadonly:
		return in.IsImmutable(src)
	case KindUnion:
		for _, m := range in.Members(dst) {
			if c.assignable(src, m) {
				return true
			}
		}
		return false
	case KindIntersection:
		for _, m := range in.Members(dst) {
			if !c.assignable(src, m) {
				return false
			}
		}
		return true
	case KindSingleton:
		return in.Identical(src, dst)
	case KindInt:
		return s.Kind == KindInt || s.Kind == KindByte || c.singletonOf(src, KindInt, KindByte)
	case KindByte:
		if s.Kind == KindByte {
			return true
		}
		lit, ok := in.SingletonLiteral(src)
		return ok && lit.InByteRange()
	case KindFloat, KindString, KindBoolean, KindNil:
		return s.Kind == d.Kind || c.singletonOf(src, d.Kind)
	case KindRecord:
		if d.Readonly && !in.IsImmutable(src) {
			return false
		}
		return s.Kind == KindRecord && c.recordAssignable(src, dst)
	case KindMap:
		if d.Readonly && !in.IsImmutable(src) {
			return false
		}
		return c.mapAssignable(src, s, d.Elem)
	case KindFunction:
		return s.Kind == KindFunction && c.functionAssignable(src, dst)
	}
	return false
}

func (c *assignCtx) singletonOf(src TypeID, kinds ...Kind) bool {
	lit, ok := c.in.SingletonLiteral(src)
	if !ok {
		return false
	}
	for _, k := range kinds {
		if lit.Kind == k {
			return true
		}
	}
	return false
}

func (c *assignCtx) recordAssignable(src, dst TypeID) bool {
	rs, _ := c.in.RecordInfo(src)
	rd, _ := c.in.RecordInfo(dst)
	closed := rd.Closed
	switch c.opts.RecordPolicy {
	case RecordsOpen:
		closed = false
	case RecordsClosed:
		closed = true
	}
	for _, fd := range rd.Fields {
		fs, ok := rs.Field(fd.Name)
		if !ok {
			if !fd.Optional {
				return false
			}
			continue
		}
		if fs.Optional && !fd.Optional {
			return false
		}
		if !c.assignable(fs.Type, fd.Type) {
			return false
		}
	}
	for _, fs := range rs.Fields {
		if _, ok := rd.Field(fs.Name); ok {
			continue
		}
		switch {
		case rd.Rest.IsValid():
			if !c.assignable(fs.Type, rd.Rest) {
				return false
			}
		case closed:
			return false
		}
	}
	if closed && !rs.Closed {
		if !rd.Rest.IsValid() {
			return false
		}
		if rs.Rest.IsValid() && !c.assignable(rs.Rest, rd.Rest) {
			return false
		}
	}
	return true
}

func (c *assignCtx) mapAssignable(src TypeID, s Type, elem TypeID) bool {
	switch s.Kind {
	case KindMap:
		return c.assignable(s.Elem, elem)
	case KindRecord:
		rs, _ := c.in.RecordInfo(src)
		for _, f := range rs.Fields {
			if !c.assignable(f.Type, elem) {
				return false
			}
		}
		if rs.Rest.IsValid() && !c.assignable(rs.Rest, elem) {
			return false
		}
		return rs.Closed || rs.Rest.IsValid() || c.opts.RecordPolicy == RecordsClosed
	}
	return false
}

func (c *assignCtx) functionAssignable(src, dst TypeID) bool {
	fs, _ := c.in.FnInfo(src)
	fd, _ := c.in.FnInfo(dst)
	if fd.Isolated && !fs.Isolated {
		return false
	}
	if fd.Any {
		return true
	}
	if fs.Any || len(fs.Params) != len(fd.Params) {
		return false
	}
	for i := range fd.Params {
		if !c.assignable(fd.Params[i], fs.Params[i]) {
			return false
		}
	}
	if !fd.Result.IsValid() {
		return true
	}
	result := fs.Result
	if !result.IsValid() {
		result = c.in.builtins.Nil
	}
	return c.assignable(result, fd.Result)
}

// IsImmutable reports whether every value of the type is deeply immutable.
func (in *Interner) IsImmutable(id TypeID) bool {
	id = in.Resolve(id)
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindInt, KindFloat, KindString, KindBoolean, KindByte, KindNil,
		KindSingleton, KindNever, KindReadonly, KindError:
		return true
	case KindRecord, KindMap:
		return tt.Readonly
	case KindUnion:
		for _, m := range in.Members(id) {
			if !in.IsImmutable(m) {
				return false
			}
		}
		return true
	case KindIntersection:
		eff := in.Effective(id)
		return eff != id && in.IsImmutable(eff)
	case KindFunction:
		info, _ := in.FnInfo(id)
		return info.Isolated
	}
	return false
}
