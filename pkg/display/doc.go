// Package display formats stored answers for read-back: option labels instead
// of raw tokens, masked passwords, file strategies and the summary lines shown
// in submission lists.
package display
