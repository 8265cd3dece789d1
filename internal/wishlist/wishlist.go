// Package wishlist keeps the books a session marked for later.
package wishlist

import (
	"sync"

	"github.com/fjod/go_bookstore/internal/catalog"
)

// Wishlist is ordered by insertion. A book appears at most once.
type Wishlist struct {
	mu    sync.Mutex
	books []catalog.Book
}

func New() *Wishlist {
	return &Wishlist{}
}

// Toggle adds the book when absent and removes it when present. It reports
// whether the book is on the list afterwards.
func (w *Wishlist) Toggle(book catalog.Book) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOf(book.ISBN); i >= 0 {
		w.books = append(w.books[:i], w.books[i+1:]...)
		return false
	}
	w.books = append(w.books, book)
	return true
}

func (w *Wishlist) Contains(isbn string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(isbn) >= 0
}

func (w *Wishlist) Remove(isbn string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexOf(isbn); i >= 0 {
		w.books = append(w.books[:i], w.books[i+1:]...)
	}
}

// Items returns a copy of the list.
func (w *Wishlist) Items() []catalog.Book {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]catalog.Book, len(w.books))
	copy(out, w.books)
	return out
}

func (w *Wishlist) indexOf(isbn string) int {
	for i, b := range w.books {
		if b.ISBN == isbn {
			return i
		}
	}
	return -1
}
