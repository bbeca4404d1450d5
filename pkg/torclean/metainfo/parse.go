package metainfo

import (
	"fmt"
	"unicode/utf8"

	"torclean/pkg/torclean/bencode"
)

const pieceHashLen = 20

// Parse decodes a torrent descriptor and projects it into a Metainfo.
// Decoding failures surface as bencode errors; structurally valid input
// that is semantically wrong for this tool surfaces as metainfo errors.
// Both happen before any filesystem access.
func Parse(data []byte) (*Metainfo, error) {
	root, err := bencode.DecodeDict(data)
	if err != nil {
		return nil, err
	}
	return Project(root)
}

// Project turns a decoded top-level dictionary into a Metainfo.
func Project(root bencode.Value) (*Metainfo, error) {
	m := &Metainfo{}

	if announce, ok := root.DictGet("announce"); ok {
		if announce.Kind != bencode.KindString {
			return nil, &FieldError{Field: "announce", Err: ErrInvalidType}
		}
		m.Announce = string(announce.Bytes)
	}

	info, ok := root.DictGet("info")
	if !ok {
		return nil, &FieldError{Field: "info", Err: ErrMissingField}
	}
	if info.Kind != bencode.KindDict {
		return nil, &FieldError{Field: "info", Err: ErrInvalidType}
	}

	if err := projectInfo(info, &m.Info); err != nil {
		return nil, err
	}
	return m, nil
}

func projectInfo(info bencode.Value, out *Info) error {
	name, ok := info.DictGet("name")
	if !ok {
		return &FieldError{Field: "info.name", Err: ErrMissingField}
	}
	if name.Kind != bencode.KindString {
		return &FieldError{Field: "info.name", Err: ErrInvalidType}
	}
	if err := checkSegment(string(name.Bytes)); err != nil {
		return &FieldError{Field: "info.name", Err: err}
	}
	out.Name = string(name.Bytes)

	if err := projectPieces(info, out); err != nil {
		return err
	}

	// A "length" key marks a single-file torrent. Out of scope: there is
	// no directory tree to reconcile.
	if _, single := info.DictGet("length"); single {
		return ErrNotMultiFile
	}

	files, ok := info.DictGet("files")
	if !ok {
		return ErrNotMultiFile
	}
	if files.Kind != bencode.KindList {
		return &FieldError{Field: "info.files", Err: ErrInvalidType}
	}
	if len(files.List) == 0 {
		return &FieldError{Field: "info.files", Err: ErrMissingField}
	}

	out.Files = make([]FileEntry, 0, len(files.List))
	for i, fv := range files.List {
		entry, err := projectFileEntry(fv, fmt.Sprintf("info.files[%d]", i))
		if err != nil {
			return err
		}
		out.Files = append(out.Files, entry)
	}
	return nil
}

func projectPieces(info bencode.Value, out *Info) error {
	pieceLength, ok := info.DictGet("piece length")
	if !ok {
		return &FieldError{Field: "info.piece length", Err: ErrMissingField}
	}
	if pieceLength.Kind != bencode.KindInteger {
		return &FieldError{Field: "info.piece length", Err: ErrInvalidType}
	}
	if pieceLength.Int <= 0 {
		return &FieldError{Field: "info.piece length", Err: ErrInvalidPieces}
	}
	out.PieceLength = pieceLength.Int

	pieces, ok := info.DictGet("pieces")
	if !ok {
		return &FieldError{Field: "info.pieces", Err: ErrMissingField}
	}
	if pieces.Kind != bencode.KindString {
		return &FieldError{Field: "info.pieces", Err: ErrInvalidType}
	}
	if len(pieces.Bytes) == 0 || len(pieces.Bytes)%pieceHashLen != 0 {
		return &FieldError{Field: "info.pieces", Err: ErrInvalidPieces}
	}

	out.Pieces = make([][pieceHashLen]byte, len(pieces.Bytes)/pieceHashLen)
	for i := range out.Pieces {
		copy(out.Pieces[i][:], pieces.Bytes[i*pieceHashLen:])
	}
	return nil
}

func projectFileEntry(fv bencode.Value, field string) (FileEntry, error) {
	if fv.Kind != bencode.KindDict {
		return FileEntry{}, &FieldError{Field: field, Err: ErrInvalidType}
	}

	length, ok := fv.DictGet("length")
	if !ok {
		return FileEntry{}, &FieldError{Field: field + ".length", Err: ErrMissingField}
	}
	if length.Kind != bencode.KindInteger {
		return FileEntry{}, &FieldError{Field: field + ".length", Err: ErrInvalidType}
	}
	if length.Int < 0 {
		return FileEntry{}, &FieldError{Field: field + ".length", Err: ErrInvalidType}
	}

	path, ok := fv.DictGet("path")
	if !ok {
		return FileEntry{}, &FieldError{Field: field + ".path", Err: ErrMissingField}
	}
	if path.Kind != bencode.KindList {
		return FileEntry{}, &FieldError{Field: field + ".path", Err: ErrInvalidType}
	}
	if len(path.List) == 0 {
		return FileEntry{}, &FieldError{Field: field + ".path", Err: ErrInvalidPath}
	}

	segments := make([]string, 0, len(path.List))
	for _, sv := range path.List {
		if sv.Kind != bencode.KindString {
			return FileEntry{}, &FieldError{Field: field + ".path", Err: ErrInvalidType}
		}
		seg := string(sv.Bytes)
		if err := checkSegment(seg); err != nil {
			return FileEntry{}, &FieldError{Field: field + ".path", Err: err}
		}
		segments = append(segments, seg)
	}

	return FileEntry{Path: segments, Length: length.Int}, nil
}

// checkSegment rejects path segments that could escape or alias the
// torrent root when joined into a filesystem path.
func checkSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." {
		return ErrInvalidPath
	}
	if !utf8.ValidString(seg) {
		return ErrInvalidPath
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] == '/' || seg[i] == '\\' || seg[i] == 0 {
			return ErrInvalidPath
		}
	}
	return nil
}
