package codegen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
)

const jasmExt = ".jasmin"

// The class preamble declares the class, its superclass, and the
// statics of the input scanner, set up in the static initializer.
const classPreamble = ".class public %[1]s\n" +
	".super java/lang/Object\n\n" +
	".field private static final charsetName Ljava/lang/String;\n" +
	".field private static final usLocale Ljava/util/Locale;\n" +
	".field private static final scanner Ljava/util/Scanner;\n\n" +
	".method static public <clinit>()V\n" +
	".limit stack 5\n" +
	".limit locals 1 \n" +
	"\tldc\t\"UTF-8\"\n" +
	"\tputstatic %[1]s/charsetName Ljava/lang/String;\n" +
	"\tnew\tjava/util/Locale\n" +
	"\tdup\n" +
	"\tldc\t\"en\"\n" +
	"\tldc\t\"US\"\n" +
	"\tinvokespecial " +
	"java/util/Locale/<init>(Ljava/lang/String;Ljava/lang/String;)V\n" +
	"\tputstatic %[1]s/usLocale Ljava/util/Locale;\n" +
	"\tnew\tjava/util/Scanner\n" +
	"\tdup\n" +
	"\tnew\tjava/io/BufferedInputStream\n" +
	"\tdup\n" +
	"\tgetstatic java/lang/System/in Ljava/io/InputStream;\n" +
	"\tinvokespecial" +
	" java/io/BufferedInputStream/<init>(Ljava/io/InputStream;)V\n" +
	"\tgetstatic %[1]s/charsetName Ljava/lang/String;\n" +
	"\tinvokespecial " +
	"java/util/Scanner/<init>(Ljava/io/InputStream;Ljava/lang/String;)V\n" +
	"\tputstatic %[1]s/scanner Ljava/util/Scanner;\n" +
	"\tgetstatic %[1]s/scanner Ljava/util/Scanner;\n" +
	"\tgetstatic %[1]s/usLocale Ljava/util/Locale;\n" +
	"\tinvokevirtual" +
	" java/util/Scanner/useLocale(Ljava/util/Locale;)Ljava/util/Scanner;\n" +
	"\tpop\n" +
	"\treturn\n" +
	".end method\n\n"

const methodInit = ".method public <init>()V\n" +
	"\taload_0\n" +
	"\tinvokespecial java/lang/Object/<init>()V\n" +
	"\treturn\n" +
	".end method\n\n"

const methodReadInt = ".method public static readInt()I\n" +
	".limit stack 1\n" +
	".limit locals 1\n" +
	"\tgetstatic %s/scanner Ljava/util/Scanner;\n" +
	"\tinvokevirtual java/util/Scanner/nextInt()I\n" +
	"\tireturn\n" +
	".end method\n\n"

const methodReadBoolean = ".method public static readBoolean()Z\n" +
	".limit stack 2\n" +
	".limit locals 1\n" +
	"\tgetstatic %s/scanner Ljava/util/Scanner;\n" +
	"\tinvokevirtual java/util/Scanner/next()Ljava/lang/String;\n" +
	"\tastore 0\n" +
	"\taload 0\n" +
	"\tldc\t\"true\"\n" +
	"\tinvokevirtual java/lang/String/equalsIgnoreCase(Ljava/lang/String;)Z\n" +
	"\tifeq False\n" +
	"\ticonst_1\n" +
	"\tireturn\n" +
	"False:\n" +
	"\taload 0\n" +
	"\tldc\t\"false\"\n" +
	"\tinvokevirtual java/lang/String/equalsIgnoreCase(Ljava/lang/String;)Z\n" +
	"\tifeq Exception\n" +
	"\ticonst_0\n" +
	"\tireturn\n" +
	"Exception:\n" +
	"\tnew\tjava/util/InputMismatchException\n" +
	"\tdup\n" +
	"\tinvokespecial java/util/InputMismatchException/<init>()V\n" +
	"\tathrow\n" +
	".end method\n\n"

// method references of the output and input routines
const (
	refPrintStream  = "java/lang/System/out Ljava/io/PrintStream;"
	refPrintBoolean = "java/io/PrintStream/print(Z)V"
	refPrintInteger = "java/io/PrintStream/print(I)V"
	refPrintString  = "java/io/PrintStream/print(Ljava/lang/String;)V"
	refReadBoolean  = "/readBoolean()Z"
	refReadInteger  = "/readInt()I"
)

// Dump writes the complete Jasmin translation unit: the class preamble
// with the runtime input routines, then every closed method body.
func (g *Generator) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	dumpPreamble(bw, g.className)
	for _, b := range g.bodies {
		dumpMethod(bw, b)
	}
	return bw.Flush()
}

// List writes the Jasmin translation unit to standard output.
func (g *Generator) List() error {
	return g.Dump(os.Stdout)
}

// MakeCodeFile writes the Jasmin translation unit to the code file
// named after the class and returns the file's path.
func (g *Generator) MakeCodeFile() (string, error) {
	f, err := os.Create(g.jasmName)
	if err != nil {
		return "", err
	}
	if err := g.Dump(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return g.jasmName, nil
}

// RemoveCodeFile deletes the code file written by MakeCodeFile.
func (g *Generator) RemoveCodeFile() error {
	return os.Remove(g.jasmName)
}

// Assemble runs the Jasmin assembler jar on the code file. The
// assembler inherits the standard streams.
func (g *Generator) Assemble(jasminJar string) error {
	cmd := exec.Command("java", "-jar", jasminJar, g.jasmName)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func dumpPreamble(w *bufio.Writer, name string) {
	fmt.Fprintf(w, classPreamble, name)
	w.WriteString(methodInit)
	fmt.Fprintf(w, methodReadInt, name)
	fmt.Fprintf(w, methodReadBoolean, name)
}

func dumpMethod(w *bufio.Writer, b *body) {
	if b.name == "main" {
		w.WriteString(".method public static main([Ljava/lang/String;)V\n")
	} else {
		fmt.Fprintf(w, ".method public static %s(", b.name)
		for _, par := range b.props.Signature.Params {
			if par.Array {
				w.WriteString("[")
			}
			w.WriteString("I")
		}
		fmt.Fprintf(w, ")%s\n", returnDescriptor(b.props))
	}
	fmt.Fprintf(w, ".limit stack %d\n", b.maxStack)
	fmt.Fprintf(w, ".limit locals %d\n", b.locals)

	for _, c := range b.code {
		switch c.kind {
		case kindLabel:
			fmt.Fprintf(w, "L%d:\n", c.label)
		case kindLabelOperand:
			fmt.Fprintf(w, " L%d\n", c.label)
		case kindInstruction:
			w.WriteByte('\t')
			w.WriteString(instructions[c.op].mnemonic)
			if !instructions[c.op].hasOperand {
				w.WriteByte('\n')
			}
		case kindIntOperand:
			fmt.Fprintf(w, " %d\n", c.num)
		case kindRefOperand:
			fmt.Fprintf(w, " %s\n", c.str)
		case kindStringOperand:
			fmt.Fprintf(w, " \"%s\"\n", c.str)
		case kindATypeOperand:
			fmt.Fprintf(w, " %s\n", c.atype)
		}
	}

	// guard against a dangling label at the end of the code stream
	if n := len(b.code); n > 0 && b.code[n-1].kind == kindLabel {
		w.WriteString("\tnop\n")
	}
	w.WriteString(".end method\n\n")
}
