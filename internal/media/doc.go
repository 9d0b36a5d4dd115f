// Package media uploads course images and audio to S3-compatible object
// storage and reports the public URL the admin API should store.
//
// Files are sniffed before upload: images must detect as image/*, audio as
// audio/* (or video/* for containers such as m4a that sniff ambiguously).
// Object keys take the form <prefix>/<uuid><ext>.
package media
