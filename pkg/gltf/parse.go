package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// glTF parse errors.
var (
	ErrInvalidMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedVersion = errors.New("unsupported glTF version")
	ErrTruncatedData      = errors.New("truncated GLB data")
	ErrMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	ErrInvalidBufferURI   = errors.New("invalid buffer URI")
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	Length uint32
	Type   uint32
}

// Parse parses GLB or glTF JSON data, detected by the GLB magic.
func Parse(data []byte, baseDir string) (*Document, error) {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == GLBMagic {
		return parseGLB(data, baseDir)
	}
	return parseJSON(data, nil, baseDir)
}

// parseGLB walks the 12-byte header and the JSON/BIN chunks.
func parseGLB(data []byte, baseDir string) (*Document, error) {
	if len(data) < 12 {
		return nil, ErrTruncatedData
	}

	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, ErrTruncatedData
	}
	if header.Magic != GLBMagic {
		return nil, ErrInvalidMagic
	}
	if header.Version != GLBVersion {
		return nil, fmt.Errorf("%w: GLB container %d", ErrUnsupportedVersion, header.Version)
	}

	var jsonData, binData []byte
	for {
		var ch glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: chunk header", ErrTruncatedData)
		}
		if int64(ch.Length) > int64(r.Len()) {
			return nil, fmt.Errorf("%w: chunk of %d bytes", ErrTruncatedData, ch.Length)
		}

		chunk := make([]byte, ch.Length)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("%w: chunk data", ErrTruncatedData)
		}

		switch ch.Type {
		case GLBChunkJSON:
			jsonData = chunk
		case GLBChunkBIN:
			binData = chunk
		}
	}

	if jsonData == nil {
		return nil, ErrMissingJSONChunk
	}
	return parseJSON(jsonData, binData, baseDir)
}

func parseJSON(data, binChunk []byte, baseDir string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Asset.Version)
	}
	if err := loadBuffers(&doc, binChunk, baseDir); err != nil {
		return nil, fmt.Errorf("loading buffers: %w", err)
	}
	return &doc, nil
}

func loadBuffers(doc *Document, binChunk []byte, baseDir string) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && binChunk != nil:
			buf.Data = binChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		default:
			data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(buf.URI)))
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
		}
	}
	return nil
}

// decodeDataURI decodes data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, ErrInvalidBufferURI
	}
	header := uri[len("data:"):comma]
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidBufferURI, header)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return data, nil
}
