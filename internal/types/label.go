package types

import "strings"

const errorLabel = "$CompilationError$"

// Label returns the user-facing spelling of a type.
func Label(in *Interner, id TypeID) string {
	var sb strings.Builder
	writeLabel(&sb, in, id, 0)
	return sb.String()
}

// Signature renders record types field by field; other types render as Label.
func Signature(in *Interner, id TypeID) string {
	var sb strings.Builder
	writeSignature(&sb, in, id, 0)
	return sb.String()
}

func writeLabel(sb *strings.Builder, in *Interner, id TypeID, depth int) {
	if depth > 8 {
		sb.WriteString("...")
		return
	}
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("?")
		return
	}
	switch tt.Kind {
	case KindInt:
		sb.WriteString("int")
	case KindFloat:
		sb.WriteString("float")
	case KindString:
		sb.WriteString("string")
	case KindBoolean:
		sb.WriteString("boolean")
	case KindByte:
		sb.WriteString("byte")
	case KindNil:
		sb.WriteString("()")
	case KindAny:
		sb.WriteString("any")
	case KindNever:
		sb.WriteString("never")
	case KindReadonly:
		sb.WriteString("readonly")
	case KindError:
		sb.WriteString(errorLabel)
	case KindSingleton:
		lit, _ := in.SingletonLiteral(id)
		sb.WriteString(lit.String())
	case KindRecord:
		writeSignature(sb, in, id, depth)
	case KindMap:
		sb.WriteString("map<")
		writeLabel(sb, in, tt.Elem, depth+1)
		sb.WriteString(">")
	case KindUnion:
		members := in.Members(id)
		if len(members) == 2 && in.KindOf(members[1]) == KindNil {
			writeOperand(sb, in, members[0], depth+1)
			sb.WriteString("?")
			return
		}
		for i, m := range members {
			if i > 0 {
				sb.WriteString("|")
			}
			writeOperand(sb, in, m, depth+1)
		}
	case KindIntersection:
		for i, m := range in.Members(id) {
			if i > 0 {
				sb.WriteString(" & ")
			}
			writeOperand(sb, in, m, depth+1)
		}
	case KindFunction:
		writeFunction(sb, in, id, depth)
	case KindReference:
		info, _ := in.RefInfo(id)
		if info.Module != "" {
			sb.WriteString(info.Module)
			sb.WriteString(":")
		}
		sb.WriteString(info.Name)
	default:
		sb.WriteString("?")
	}
}

// writeOperand parenthesizes nested unions and intersections.
func writeOperand(sb *strings.Builder, in *Interner, id TypeID, depth int) {
	switch in.KindOf(id) {
	case KindUnion, KindIntersection:
		sb.WriteString("(")
		writeLabel(sb, in, id, depth)
		sb.WriteString(")")
	default:
		writeLabel(sb, in, id, depth)
	}
}

// writeFunction: `function (string,int) returns (string)`.
func writeFunction(sb *strings.Builder, in *Interner, id TypeID, depth int) {
	info, _ := in.FnInfo(id)
	if info.Isolated {
		sb.WriteString("isolated ")
	}
	sb.WriteString("function")
	if info.Any {
		return
	}
	sb.WriteString(" (")
	for i, p := range info.Params {
		if i > 0 {
			sb.WriteString(",")
		}
		writeLabel(sb, in, p, depth+1)
	}
	sb.WriteString(")")
	if info.Result.IsValid() {
		sb.WriteString(" returns (")
		writeLabel(sb, in, info.Result, depth+1)
		sb.WriteString(")")
	}
}

func writeSignature(sb *strings.Builder, in *Interner, id TypeID, depth int) {
	rec, ok := in.RecordInfo(id)
	if !ok {
		writeLabel(sb, in, id, depth)
		return
	}
	if len(rec.Fields) == 0 && !rec.Rest.IsValid() {
		if rec.Closed {
			sb.WriteString("record {||}")
		} else {
			sb.WriteString("record {}")
		}
		return
	}
	open, closing := "record { ", " }"
	if rec.Closed {
		open, closing = "record {|", "|}"
	}
	sb.WriteString(open)
	for i, f := range rec.Fields {
		if i > 0 {
			sb.WriteString(" ")
		}
		writeFieldType(sb, in, f.Type, depth+1)
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		if f.Optional {
			sb.WriteString("?")
		}
		sb.WriteString(";")
	}
	if rec.Rest.IsValid() {
		if len(rec.Fields) > 0 {
			sb.WriteString(" ")
		}
		writeFieldType(sb, in, rec.Rest, depth+1)
		sb.WriteString("...;")
	}
	sb.WriteString(closing)
}

// writeFieldType prints `R & readonly` members by their record shape.
func writeFieldType(sb *strings.Builder, in *Interner, id TypeID, depth int) {
	if in.KindOf(id) == KindIntersection {
		var shape TypeID
		for _, m := range in.Members(id) {
			if in.KindOf(m) == KindReadonly {
				continue
			}
			if shape.IsValid() {
				shape = NoTypeID
				break
			}
			shape = m
		}
		if shape.IsValid() {
			writeFieldType(sb, in, shape, depth)
			return
		}
	}
	writeSignature(sb, in, id, depth)
}
