// Package domain derives the human-readable domain label the grouper uses as
// both bucket key and group title. Label is a pure function of the URL: it
// carries no state and is recomputed on every run rather than cached.
package domain
