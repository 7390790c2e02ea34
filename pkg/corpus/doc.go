/*
Package corpus turns text files of unknown encoding into an ordered sequence
of Cyrillic word tokens.

A file is decoded as UTF-8 when its bytes allow it and falls back to
Windows-1251 when a byte-statistics sniff says the file looks like legacy
Cyrillic text. Decoded lines are split into words, normalised and filtered
by a Tokenizer, and the surviving tokens of every file are concatenated into
a single Corpus in file-then-line order.
*/
package corpus
