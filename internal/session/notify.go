package session

import (
	"fmt"
	"io"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification es un aviso transitorio para el usuario.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapta una funcion a Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// WriterNotifier imprime cada aviso como una linea en W.
type WriterNotifier struct {
	W io.Writer
}

func (w WriterNotifier) Notify(n Notification) {
	prefix := ""
	if n.Variant == VariantDestructive {
		prefix = "error: "
	}
	if n.Description == "" {
		fmt.Fprintf(w.W, "%s%s\n", prefix, n.Title)
		return
	}
	fmt.Fprintf(w.W, "%s%s: %s\n", prefix, n.Title, n.Description)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
