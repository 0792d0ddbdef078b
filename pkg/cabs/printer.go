// AST dump used by the CLI's --dparse flag.
package cabs

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs the AST in a human-readable, C-like format. The output
// is a debugging aid, not valid C: resolved types print in prefix form.
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintTranslationUnit prints a whole translation unit
func (p *Printer) PrintTranslationUnit(tu *TranslationUnit) {
	for _, def := range tu.Defs {
		p.printDefinition(def)
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printDefinition(def Definition) {
	switch d := def.(type) {
	case FunDef:
		p.printFunDef(d)
	case *Decl:
		p.printDecl(d)
		fmt.Fprintln(p.w, ";")
	default:
		fmt.Fprintf(p.w, "/* unknown definition %T */\n", def)
	}
}

func (p *Printer) printFunDef(f FunDef) {
	if s := f.Storage.String(); s != "" {
		fmt.Fprintf(p.w, "%s ", s)
	}
	fmt.Fprintf(p.w, "%s %s(", f.Type.Return, f.Name)
	for i, param := range f.Type.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		if param.Name != "" {
			fmt.Fprintf(p.w, "%s %s", param.Type, param.Name)
		} else {
			fmt.Fprint(p.w, param.Type)
		}
	}
	if f.Type.Variadic {
		if len(f.Type.Params) > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, "...")
	}
	fmt.Fprintln(p.w, ")")
	p.printBlock(f.Body)
}

func (p *Printer) printDecl(d *Decl) {
	if s := d.Storage.String(); s != "" {
		fmt.Fprintf(p.w, "%s ", s)
	}
	if d.Name == "" {
		fmt.Fprint(p.w, d.Type)
		return
	}
	fmt.Fprintf(p.w, "%s %s", d.Type, d.Name)
	if d.Init != nil {
		fmt.Fprint(p.w, " = ")
		p.printExpr(d.Init)
	}
}

func (p *Printer) printBlock(b *Block) {
	p.writeIndent()
	fmt.Fprintln(p.w, "{")
	p.indent++
	for _, stmt := range b.Items {
		p.printStmt(stmt)
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printStmt(stmt Stmt) {
	p.writeIndent()
	switch s := stmt.(type) {
	case Return:
		fmt.Fprint(p.w, "return")
		if s.Expr != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Expr)
		}
		fmt.Fprintln(p.w, ";")
	case ExprStmt:
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ";")
	case Null:
		fmt.Fprintln(p.w, ";")
	case DeclStmt:
		for i, decl := range s.Decls {
			if i > 0 {
				p.writeIndent()
			}
			p.printDecl(decl)
			fmt.Fprintln(p.w, ";")
		}
	case If:
		fmt.Fprint(p.w, "if (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printSubStmt(s.Then)
		if s.Else != nil {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.printSubStmt(s.Else)
		}
	case Switch:
		fmt.Fprint(p.w, "switch (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printSubStmt(s.Body)
	case Case:
		fmt.Fprint(p.w, "case ")
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ":")
		p.printSubStmt(s.Stmt)
	case Default:
		fmt.Fprintln(p.w, "default:")
		p.printSubStmt(s.Stmt)
	case While:
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printSubStmt(s.Body)
	case DoWhile:
		fmt.Fprintln(p.w, "do")
		p.printSubStmt(s.Body)
		p.writeIndent()
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ");")
	case For:
		fmt.Fprint(p.w, "for (")
		switch init := s.Init.(type) {
		case DeclStmt:
			for i, d := range init.Decls {
				if i > 0 {
					fmt.Fprint(p.w, ", ")
				}
				p.printDecl(d)
			}
		case ExprStmt:
			p.printExpr(init.Expr)
		}
		fmt.Fprint(p.w, "; ")
		if s.Cond != nil {
			p.printExpr(s.Cond)
		}
		fmt.Fprint(p.w, "; ")
		if s.Post != nil {
			p.printExpr(s.Post)
		}
		fmt.Fprintln(p.w, ")")
		p.printSubStmt(s.Body)
	case Break:
		fmt.Fprintln(p.w, "break;")
	case Continue:
		fmt.Fprintln(p.w, "continue;")
	case Goto:
		fmt.Fprintf(p.w, "goto %s;\n", s.Label)
	case Labeled:
		fmt.Fprintf(p.w, "%s:\n", s.Label)
		p.printStmt(s.Stmt)
	case Block:
		p.indent--
		p.printBlock(&s)
		p.indent++
	case *Block:
		p.indent--
		p.printBlock(s)
		p.indent++
	default:
		fmt.Fprintf(p.w, "/* unknown stmt %T */;\n", stmt)
	}
}

func (p *Printer) printSubStmt(stmt Stmt) {
	p.indent++
	p.printStmt(stmt)
	p.indent--
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case Constant:
		if e.Text != "" {
			fmt.Fprint(p.w, e.Text)
		} else {
			fmt.Fprintf(p.w, "%d", e.Value)
		}
	case FloatConstant:
		fmt.Fprint(p.w, e.Text)
	case CharLiteral:
		fmt.Fprintf(p.w, "'%s'", e.Text)
	case StringLiteral:
		fmt.Fprintf(p.w, "\"%s\"", e.Value)
	case Variable:
		fmt.Fprint(p.w, e.Name)
	case Unary:
		p.printUnary(e)
	case Binary:
		p.printExpr(e.Left)
		fmt.Fprintf(p.w, " %s ", e.Op)
		p.printExpr(e.Right)
	case Paren:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Expr)
		fmt.Fprint(p.w, ")")
	case Conditional:
		p.printExpr(e.Cond)
		fmt.Fprint(p.w, " ? ")
		p.printExpr(e.Then)
		fmt.Fprint(p.w, " : ")
		p.printExpr(e.Else)
	case Call:
		p.printExpr(e.Func)
		fmt.Fprint(p.w, "(")
		for i, arg := range e.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(arg)
		}
		fmt.Fprint(p.w, ")")
	case Index:
		p.printExpr(e.Array)
		fmt.Fprint(p.w, "[")
		p.printExpr(e.Index)
		fmt.Fprint(p.w, "]")
	case Member:
		p.printExpr(e.Expr)
		if e.IsArrow {
			fmt.Fprint(p.w, "->")
		} else {
			fmt.Fprint(p.w, ".")
		}
		fmt.Fprint(p.w, e.Name)
	case Cast:
		fmt.Fprintf(p.w, "(%s)", e.Type)
		p.printExpr(e.Expr)
	case CompoundLiteral:
		fmt.Fprintf(p.w, "(%s)", e.Type)
		p.printInitList(e.Init)
	case SizeofExpr:
		fmt.Fprint(p.w, "sizeof ")
		p.printExpr(e.Expr)
	case SizeofType:
		fmt.Fprintf(p.w, "sizeof(%s)", e.Type)
	case InitList:
		p.printInitList(e)
	default:
		fmt.Fprintf(p.w, "/* unknown expr %T */", expr)
	}
}

func (p *Printer) printInitList(il InitList) {
	fmt.Fprint(p.w, "{")
	for i, item := range il.Items {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		for _, d := range item.Designators {
			switch des := d.(type) {
			case FieldDesignator:
				fmt.Fprintf(p.w, ".%s", des.Name)
			case IndexDesignator:
				fmt.Fprint(p.w, "[")
				p.printExpr(des.Index)
				fmt.Fprint(p.w, "]")
			}
		}
		if len(item.Designators) > 0 {
			fmt.Fprint(p.w, " = ")
		}
		p.printExpr(item.Value)
	}
	fmt.Fprint(p.w, "}")
}

func (p *Printer) printUnary(u Unary) {
	if u.Op.Postfix() {
		p.printExpr(u.Expr)
		fmt.Fprint(p.w, u.Op)
		return
	}
	fmt.Fprint(p.w, u.Op)
	p.printExpr(u.Expr)
}
