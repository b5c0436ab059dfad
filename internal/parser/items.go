package parser

import (
	"strings"

	"balsa/internal/ast"
	"balsa/internal/diag"
	"balsa/internal/source"
	"balsa/internal/token"
)

func (p *Parser) parseItem() (ast.ItemID, bool) {
	first := p.peek()
	start := first.Span
	decl := ast.Decl{Doc: first.DocLines(), DocSpan: docSpan(first)}
	for p.at(token.At) {
		decl.Attrs = append(decl.Attrs, p.parseAttachment())
	}

	for loop := true; loop; {
		switch p.peek().Kind {
		case token.KwPublic:
			decl.Mods |= ast.ModPublic
		case token.KwPrivate:
			decl.Mods |= ast.ModPrivate
		case token.KwReadonly:
			if !p.readonlyModifier() {
				loop = false
				continue
			}
			decl.Mods |= ast.ModReadonly
		case token.KwIsolated:
			decl.Mods |= ast.ModIsolated
		case token.KwFinal:
			decl.Mods |= ast.ModFinal
		case token.KwConst:
			if p.peekN(1).Kind != token.KwAnnotation {
				loop = false
				continue
			}
			decl.Mods |= ast.ModConst
		default:
			loop = false
			continue
		}
		p.bump()
	}

	if decl.Mods.Has(ast.ModPublic) && decl.Mods.Has(ast.ModPrivate) {
		p.errorf(diag.SynModifierNotAllowed, start, "a declaration cannot be both public and private")
		decl.Mods &^= ast.ModPrivate
	}

	switch p.peek().Kind {
	case token.KwImport:
		if decl.Mods != 0 || len(decl.Attrs) > 0 {
			p.errorf(diag.SynModifierNotAllowed, start, "imports cannot carry qualifiers or annotations")
		}
		return p.parseImport(start)
	case token.KwConst:
		return p.parseConst(start, decl)
	case token.KwType:
		return p.parseTypeDef(start, decl)
	case token.KwAnnotation:
		return p.parseAnnotation(start, decl)
	case token.KwFunction:
		if p.peekN(1).Kind == token.Ident && p.peekN(2).Kind == token.LParen {
			return p.parseFunction(start, decl)
		}
		return p.parseModuleVar(start, decl)
	case token.KwVar:
		return p.parseModuleVar(start, decl)
	}
	if p.canStartType() {
		return p.parseModuleVar(start, decl)
	}
	p.unexpected("declaration")
	p.syncItem()
	return ast.NoItemID, false
}

// readonlyModifier tells the `readonly` qualifier from the readonly type at
// the start of an item: `readonly int x` and `readonly Point p` qualify a
// declaration, `readonly x = ...` and `readonly & T x` use the type.
func (p *Parser) readonlyModifier() bool {
	next := p.peekN(1)
	if next.Kind.IsKeyword() {
		return true
	}
	if next.Kind != token.Ident {
		return false
	}
	return p.peekN(2).Is(token.Ident, token.Colon)
}

func docSpan(tok token.Token) source.Span {
	var sp source.Span
	for _, tr := range tok.Leading {
		if tr.Kind != token.TriviaDocComment {
			continue
		}
		if sp.IsZero() {
			sp = tr.Span
			continue
		}
		sp = sp.Cover(tr.Span)
	}
	return sp
}

func (p *Parser) parseAttachment() ast.Attachment {
	at := p.bump()
	att := ast.Attachment{Span: at.Span}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "annotation name")
	if !ok {
		return att
	}
	if p.at(token.Colon) && p.peekN(1).Kind == token.Ident {
		att.Module, att.ModuleSpan = p.intern(name), name.Span
		p.bump()
		name = p.bump()
	}
	att.Name, att.NameSpan = p.intern(name), name.Span
	if p.at(token.LBrace) {
		att.Value = p.parseMapping()
	}
	att.Span = p.spanFrom(at.Span)
	return att
}

func (p *Parser) parseImport(start source.Span) (ast.ItemID, bool) {
	p.bump()
	seg, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "unit name")
	if !ok {
		p.syncItem()
		return ast.NoItemID, false
	}
	var unit strings.Builder
	unit.WriteString(seg.Value)
	unitSpan := seg.Span
	for p.at(token.Slash, token.Dot) {
		sep := p.bump()
		next, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "unit name segment")
		if !ok {
			break
		}
		unit.WriteString(sep.Text)
		unit.WriteString(next.Value)
		seg = next
		unitSpan = unitSpan.Cover(next.Span)
	}
	imp := ast.ImportItem{Unit: unit.String(), UnitSpan: unitSpan, Prefix: p.intern(seg), PrefixSpan: seg.Span}
	if _, ok := p.eat(token.KwAs); ok {
		if alias, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "import prefix"); ok {
			imp.Prefix, imp.PrefixSpan = p.intern(alias), alias.Span
		}
	}
	p.expectSemi()
	return p.b.Items.NewImport(p.spanFrom(start), imp), true
}

func (p *Parser) parseConst(start source.Span, decl ast.Decl) (ast.ItemID, bool) {
	p.bump()
	item := ast.ConstItem{}
	if !(p.at(token.Ident) && p.peekN(1).Is(token.Assign, token.Semicolon)) {
		item.Type = p.parseType()
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "constant name")
	if !ok {
		p.syncItem()
		return ast.NoItemID, false
	}
	decl.Name, decl.NameSpan = p.intern(name), name.Span
	if _, ok := p.eat(token.Assign); ok && !p.at(token.Semicolon) {
		item.Value = p.parseExpr()
	} else {
		p.errorf(diag.SynMissingConstInit, name.Span, "missing constant initializer for '%s'", name.Value)
	}
	p.expectSemi()
	item.Decl = decl
	return p.b.Items.NewConst(p.spanFrom(start), item), true
}

func (p *Parser) parseTypeDef(start source.Span, decl ast.Decl) (ast.ItemID, bool) {
	p.bump()
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "type name")
	if !ok {
		p.syncItem()
		return ast.NoItemID, false
	}
	decl.Name, decl.NameSpan = p.intern(name), name.Span
	item := ast.TypeDefItem{Type: p.parseType()}
	p.expectSemi()
	item.Decl = decl
	return p.b.Items.NewTypeDef(p.spanFrom(start), item), true
}

func (p *Parser) parseAnnotation(start source.Span, decl ast.Decl) (ast.ItemID, bool) {
	p.bump()
	item := ast.AnnotationItem{}
	if !(p.at(token.Ident) && p.peekN(1).Is(token.KwOn, token.Semicolon)) {
		item.Type = p.parseType()
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "annotation name")
	if !ok {
		p.syncItem()
		return ast.NoItemID, false
	}
	decl.Name, decl.NameSpan = p.intern(name), name.Span
	if _, ok := p.eat(token.KwOn); ok {
		item.Points = p.parseAttachPoints()
	}
	p.expectSemi()
	item.Decl = decl
	return p.b.Items.NewAnnotation(p.spanFrom(start), item), true
}

// parseAttachPoints reads `source type, const, function` style lists.
func (p *Parser) parseAttachPoints() []ast.AttachPoint {
	var out []ast.AttachPoint
	for {
		var words []string
		var sp source.Span
		for p.at(token.Ident) || p.peek().Kind.IsKeyword() {
			tok := p.bump()
			words = append(words, tok.Text)
			if sp.IsZero() {
				sp = tok.Span
			} else {
				sp = sp.Cover(tok.Span)
			}
		}
		if len(words) == 0 {
			p.errorf(diag.SynExpectIdentifier, p.peek().Span, "expected attach point, found %s", describe(p.peek()))
			return out
		}
		out = append(out, ast.AttachPoint{Name: strings.Join(words, " "), Span: sp})
		if _, ok := p.eat(token.Comma); !ok {
			return out
		}
	}
}

func (p *Parser) parseFunction(start source.Span, decl ast.Decl) (ast.ItemID, bool) {
	p.bump()
	name := p.bump()
	decl.Name, decl.NameSpan = p.intern(name), name.Span
	item := ast.FuncItem{}
	p.bump() // (
	for !p.at(token.RParen, token.EOF) {
		pstart := p.peek().Span
		typ := p.parseType()
		pname, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "parameter name")
		if !ok {
			break
		}
		item.Params = append(item.Params, ast.Param{
			Name: p.intern(pname), NameSpan: pname.Span, Type: typ, Span: p.spanFrom(pstart),
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "')'"); !ok {
		p.syncItem()
		return ast.NoItemID, false
	}
	if _, ok := p.eat(token.KwReturns); ok {
		item.Result = p.parseType()
	}
	item.Body = p.parseBlock()
	item.Decl = decl
	return p.b.Items.NewFunc(p.spanFrom(start), item), true
}

func (p *Parser) parseModuleVar(start source.Span, decl ast.Decl) (ast.ItemID, bool) {
	item := ast.VarItem{}
	if _, ok := p.eat(token.KwVar); !ok {
		item.Type = p.parseType()
		if te := p.b.Types.Get(item.Type); te != nil && te.Kind == ast.TypeExprFunction && decl.Mods.Has(ast.ModIsolated) {
			te.Isolated = true
			decl.Mods &^= ast.ModIsolated
		}
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "variable name")
	if !ok {
		p.syncItem()
		return ast.NoItemID, false
	}
	decl.Name, decl.NameSpan = p.intern(name), name.Span
	if _, ok := p.eat(token.Assign); ok {
		item.Value = p.parseExpr()
	} else if !item.Type.IsValid() {
		p.errorf(diag.SynExpectExpression, name.Span, "'var' declaration of '%s' needs an initializer", name.Value)
	}
	p.expectSemi()
	item.Decl = decl
	return p.b.Items.NewVar(p.spanFrom(start), item), true
}
