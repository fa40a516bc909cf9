// pkg/sql/parser/parser.go
//
// Package parser implements component 6 of the engine (spec.md §2): a
// hand-written recursive-descent parser turning a token stream into the
// statement AST of ast.go. The grammar is exactly the one in spec.md §4.2.
// Parser error recovery is not attempted — parsing fails fast at the
// first syntax error (spec.md §9 design note).
package parser

import (
	"strconv"

	"tur/pkg/dberrors"
	"tur/pkg/sql/lexer"
	"tur/pkg/types"
)

// Parser consumes tokens from a Lexer and builds statement ASTs.
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token
}

// New creates a Parser over the given SQL source.
func New(input string) (*Parser, error) {
	p := &Parser{l: lexer.New(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.curToken = p.peekToken
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// expect asserts the current token's type, advances past it, and returns
// a Parse error naming what was expected otherwise.
func (p *Parser) expect(t lexer.TokenType) error {
	if !p.curIs(t) {
		return dberrors.New(dberrors.Parse, "expected %s, got %s (%q) at offset %d", t, p.curToken.Type, p.curToken.Literal, p.curToken.Pos)
	}
	return p.advance()
}

// ParseStatements parses every `;`-terminated statement in the input, in
// order (spec.md §4.2: multiple statements may be submitted in one call).
func ParseStatements(input string) ([]Statement, error) {
	p, err := New(input)
	if err != nil {
		return nil, err
	}
	var stmts []Statement
	for !p.curIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		for p.curIs(lexer.SEMICOLON) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.curToken.Type {
	case lexer.CREATE:
		return p.parseCreateTable()
	case lexer.DROP:
		return p.parseDropTable()
	case lexer.INSERT:
		return p.parseInsert()
	case lexer.SELECT:
		return p.parseSelect()
	case lexer.UPDATE:
		return p.parseUpdate()
	case lexer.DELETE:
		return p.parseDelete()
	default:
		return nil, dberrors.New(dberrors.Parse, "unexpected token %s (%q) at offset %d", p.curToken.Type, p.curToken.Literal, p.curToken.Pos)
	}
}

// --- CREATE TABLE ---

func (p *Parser) parseCreateTable() (Statement, error) {
	if err := p.expect(lexer.CREATE); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TABLE); err != nil {
		return nil, err
	}

	ifNotExists := false
	if p.curIs(lexer.IF) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.NOT); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.EXISTS); err != nil {
			return nil, err
		}
		ifNotExists = true
	}

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	var cols []ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(lexer.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	return &CreateTableStmt{TableName: name, IfNotExists: ifNotExists, Columns: cols}, nil
}

func (p *Parser) parseColumnDef() (ColumnDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return ColumnDef{}, err
	}

	colType, err := p.parseColumnType()
	if err != nil {
		return ColumnDef{}, err
	}

	def := ColumnDef{Name: name, Type: colType}
	for {
		switch p.curToken.Type {
		case lexer.PRIMARY:
			if err := p.advance(); err != nil {
				return ColumnDef{}, err
			}
			if err := p.expect(lexer.KEY); err != nil {
				return ColumnDef{}, err
			}
			def.PrimaryKey = true
			continue
		case lexer.NOT:
			if err := p.advance(); err != nil {
				return ColumnDef{}, err
			}
			if err := p.expect(lexer.NULL_KW); err != nil {
				return ColumnDef{}, err
			}
			def.NotNull = true
			continue
		}
		break
	}
	return def, nil
}

// parseColumnType parses `INT ('(' int ')')?` (the width is accepted and
// discarded, per spec.md §3) or `VARCHAR '(' int ')'`.
func (p *Parser) parseColumnType() (types.ColumnType, error) {
	switch p.curToken.Type {
	case lexer.INT_TYPE:
		if err := p.advance(); err != nil {
			return types.ColumnType{}, err
		}
		if p.curIs(lexer.LPAREN) {
			if err := p.advance(); err != nil {
				return types.ColumnType{}, err
			}
			if _, err := p.parseIntLiteral(); err != nil {
				return types.ColumnType{}, err
			}
			if err := p.expect(lexer.RPAREN); err != nil {
				return types.ColumnType{}, err
			}
		}
		return types.IntType(), nil
	case lexer.VARCHAR_TYPE:
		if err := p.advance(); err != nil {
			return types.ColumnType{}, err
		}
		if err := p.expect(lexer.LPAREN); err != nil {
			return types.ColumnType{}, err
		}
		n, err := p.parseIntLiteral()
		if err != nil {
			return types.ColumnType{}, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return types.ColumnType{}, err
		}
		return types.VarcharType(n), nil
	default:
		return types.ColumnType{}, dberrors.New(dberrors.Parse, "expected column type, got %s at offset %d", p.curToken.Type, p.curToken.Pos)
	}
}

func (p *Parser) parseIntLiteral() (int, error) {
	if !p.curIs(lexer.INT) {
		return 0, dberrors.New(dberrors.Parse, "expected integer literal, got %s at offset %d", p.curToken.Type, p.curToken.Pos)
	}
	n, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		return 0, dberrors.New(dberrors.Parse, "invalid integer literal %q", p.curToken.Literal)
	}
	return n, p.advance()
}

func (p *Parser) parseIdent() (string, error) {
	if !p.curIs(lexer.IDENT) {
		return "", dberrors.New(dberrors.Parse, "expected identifier, got %s (%q) at offset %d", p.curToken.Type, p.curToken.Literal, p.curToken.Pos)
	}
	name := p.curToken.Literal
	return name, p.advance()
}

// --- DROP TABLE ---

func (p *Parser) parseDropTable() (Statement, error) {
	if err := p.expect(lexer.DROP); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TABLE); err != nil {
		return nil, err
	}

	var names []string
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.curIs(lexer.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return &DropTableStmt{TableNames: names}, nil
}

// --- INSERT ---

func (p *Parser) parseInsert() (Statement, error) {
	if err := p.expect(lexer.INSERT); err != nil {
		return nil, err
	}
	if p.curIs(lexer.INTO) {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	var cols []string
	if p.curIs(lexer.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for {
			colName, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			cols = append(cols, colName)
			if p.curIs(lexer.COMMA) {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}

	if err := p.expect(lexer.VALUES); err != nil {
		return nil, err
	}

	var tuples [][]Expression
	for {
		tuple, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, tuple)
		if p.curIs(lexer.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	return &InsertStmt{TableName: name, Columns: cols, Values: tuples}, nil
}

func (p *Parser) parseTuple() ([]Expression, error) {
	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var exprs []Expression
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.curIs(lexer.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return exprs, nil
}

// --- SELECT ---

func (p *Parser) parseSelect() (Statement, error) {
	if err := p.expect(lexer.SELECT); err != nil {
		return nil, err
	}

	var cols []SelectColumn
	if p.curIs(lexer.STAR) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		cols = append(cols, SelectColumn{Star: true})
	} else {
		for {
			colName, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			cols = append(cols, SelectColumn{Name: colName})
			if p.curIs(lexer.COMMA) {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	if err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	stmt := &SelectStmt{Columns: cols, From: from}

	if p.curIs(lexer.WHERE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.curIs(lexer.ORDER) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(lexer.BY); err != nil {
			return nil, err
		}
		for {
			keyName, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			key := OrderKey{Name: keyName}
			if p.curIs(lexer.DESC) {
				key.Desc = true
				if err := p.advance(); err != nil {
					return nil, err
				}
			} else if p.curIs(lexer.ASC) {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			stmt.OrderBy = append(stmt.OrderBy, key)
			if p.curIs(lexer.COMMA) {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	return stmt, nil
}

// --- UPDATE ---

func (p *Parser) parseUpdate() (Statement, error) {
	if err := p.expect(lexer.UPDATE); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.SET); err != nil {
		return nil, err
	}

	var assigns []Assignment
	for {
		colName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, Assignment{Column: colName, Value: val})
		if p.curIs(lexer.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	stmt := &UpdateStmt{TableName: name, Assignments: assigns}
	if p.curIs(lexer.WHERE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// --- DELETE ---

func (p *Parser) parseDelete() (Statement, error) {
	if err := p.expect(lexer.DELETE); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	stmt := &DeleteStmt{TableName: name}
	if p.curIs(lexer.WHERE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// --- Expressions ---
//
// Precedence, lowest to highest binding (spec.md §4.2):
//   OR < AND < NOT < comparison < (+ -) < (* / %) < unary-minus < atom

func (p *Parser) parseExpr() (Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(lexer.OR) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: lexer.OR, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.curIs(lexer.AND) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: lexer.AND, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, error) {
	if p.curIs(lexer.NOT) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: lexer.NOT, Right: right}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]bool{
	lexer.EQ: true, lexer.NEQ: true, lexer.LT: true,
	lexer.GT: true, lexer.LTE: true, lexer.GTE: true,
}

func (p *Parser) parseComparison() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if comparisonOps[p.curToken.Type] {
		op := p.curToken.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Op: op, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curIs(lexer.PLUS) || p.curIs(lexer.MINUS) {
		op := p.curToken.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curIs(lexer.STAR) || p.curIs(lexer.SLASH) || p.curIs(lexer.PERCENT) {
		op := p.curToken.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expression, error) {
	if p.curIs(lexer.MINUS) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: lexer.MINUS, Right: right}, nil
	}
	return p.parseAtomWithIsNull()
}

// parseAtomWithIsNull parses an atom and then, if followed by
// `IS [NOT] NULL`, wraps it in an IsNullExpr.
func (p *Parser) parseAtomWithIsNull() (Expression, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.curIs(lexer.IS) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		not := false
		if p.curIs(lexer.NOT) {
			not = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(lexer.NULL_KW); err != nil {
			return nil, err
		}
		return &IsNullExpr{Expr: atom, Not: not}, nil
	}
	return atom, nil
}

func (p *Parser) parseAtom() (Expression, error) {
	switch p.curToken.Type {
	case lexer.INT:
		n, err := strconv.Atoi(p.curToken.Literal)
		if err != nil {
			return nil, dberrors.New(dberrors.Parse, "invalid integer literal %q", p.curToken.Literal)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: types.NewInt(int32(n))}, nil
	case lexer.STRING:
		lit := p.curToken.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: types.NewText(lit)}, nil
	case lexer.NULL_KW:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: types.NewNull()}, nil
	case lexer.IDENT:
		name := p.curToken.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ColumnRef{Name: name}, nil
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, dberrors.New(dberrors.Parse, "unexpected token %s (%q) at offset %d", p.curToken.Type, p.curToken.Literal, p.curToken.Pos)
	}
}
