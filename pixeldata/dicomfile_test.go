package pixeldata

import (
	"path/filepath"
	"testing"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom/pkg/dicom/dataset"
	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/dicom/vr"
	"github.com/cocosip/go-dicom/pkg/dicom/writer"
	"github.com/cocosip/go-dicom/pkg/io/buffer"
	"github.com/google/go-cmp/cmp"
)

// imageDataset holds the attributes shared by the test files: two frames
// of 1x2 8-bit samples
func imageDataset(t *testing.T, photometric string) *dataset.Dataset {
	t.Helper()
	ds := dataset.New()
	for _, el := range []element.Element{
		element.NewString(tag.SOPClassUID, vr.UI, []string{"1.2.840.10008.5.1.4.1.1.7"}),
		element.NewString(tag.SOPInstanceUID, vr.UI, []string{"1.2.3.4.5"}),
		element.NewUnsignedShort(tag.Rows, []uint16{1}),
		element.NewUnsignedShort(tag.Columns, []uint16{2}),
		element.NewUnsignedShort(tag.SamplesPerPixel, []uint16{1}),
		element.NewUnsignedShort(tag.BitsAllocated, []uint16{8}),
		element.NewUnsignedShort(tag.BitsStored, []uint16{8}),
		element.NewUnsignedShort(tag.PixelRepresentation, []uint16{0}),
		element.NewString(tag.PhotometricInterpretation, vr.CS, []string{photometric}),
		element.NewString(tag.NumberOfFrames, vr.IS, []string{"2"}),
	} {
		if err := ds.Add(el); err != nil {
			t.Fatalf("Add(%s): %v", el.Tag(), err)
		}
	}
	return ds
}

func writeFile(t *testing.T, ds *dataset.Dataset, ts *transfer.Syntax) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.dcm")
	if err := writer.WriteFile(path, ds, writer.WithTransferSyntax(ts)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadFileNative(t *testing.T) {
	ds := imageDataset(t, "PALETTE COLOR")
	for _, el := range []element.Element{
		element.NewString(tag.RescaleSlope, vr.DS, []string{"1.5"}),
		element.NewUnsignedShort(tag.RedPaletteColorLookupTableDescriptor, []uint16{2, 0, 16}),
		element.NewUnsignedShort(tag.GreenPaletteColorLookupTableDescriptor, []uint16{2, 0, 16}),
		element.NewUnsignedShort(tag.BluePaletteColorLookupTableDescriptor, []uint16{2, 0, 16}),
		element.NewOtherWord(tag.RedPaletteColorLookupTableData, []byte{0x00, 0x00, 0xFF, 0xFF}),
		element.NewOtherWord(tag.GreenPaletteColorLookupTableData, []byte{0x00, 0x80, 0x00, 0x10}),
		element.NewOtherWord(tag.BluePaletteColorLookupTableData, []byte{0xFF, 0xFF, 0x00, 0x00}),
		element.NewOtherByte(tag.PixelData, []byte{0, 1, 1, 0}),
	} {
		if err := ds.Add(el); err != nil {
			t.Fatalf("Add(%s): %v", el.Tag(), err)
		}
	}

	e, err := ReadFile(writeFile(t, ds, transfer.ExplicitVRLittleEndian))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if ts, _ := e.String(TagTransferSyntaxUID); ts != codec.ExplicitVRLittleEndian {
		t.Errorf("transfer syntax = %q", ts)
	}
	for _, tt := range []struct {
		tag  Tag
		want uint16
	}{
		{TagRows, 1},
		{TagColumns, 2},
		{TagSamplesPerPixel, 1},
		{TagBitsAllocated, 8},
		{TagBitsStored, 8},
	} {
		if got, ok := e.Uint16(tt.tag); !ok || got != tt.want {
			t.Errorf("%s = %d, %v, want %d", tt.tag, got, ok, tt.want)
		}
	}
	if s, _ := e.String(TagPhotometricInterpretation); s != "PALETTE COLOR" {
		t.Errorf("photometric = %q", s)
	}
	if v, ok := e.FloatString(TagNumberOfFrames); !ok || v != 2 {
		t.Errorf("number of frames = %v, %v", v, ok)
	}
	if v, ok := e.FloatString(TagRescaleSlope); !ok || v != 1.5 {
		t.Errorf("rescale slope = %v, %v", v, ok)
	}
	for i, want := range []int16{2, 0, 16} {
		if v, ok := e.Int16(TagGreenPaletteDescriptor, i); !ok || v != want {
			t.Errorf("green descriptor %d = %d, %v, want %d", i, v, ok, want)
		}
	}
	if b, _ := e.Bytes(TagGreenPaletteData); !cmp.Equal([]byte{0x00, 0x80, 0x00, 0x10}, b) {
		t.Errorf("green palette data = %v", b)
	}
	pd, ok := e.PixelData()
	if !ok {
		t.Fatal("pixel data missing")
	}
	if diff := cmp.Diff([]byte{0, 1, 1, 0}, pd.Native); diff != "" {
		t.Errorf("native pixel data mismatch (-want +got):\n%s", diff)
	}

	f, err := NewDecoder().DecodeFrame(e, 1)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if diff := cmp.Diff([]byte{255, 16, 0, 255, 0, 128, 255, 255}, f.RGBA); diff != "" {
		t.Errorf("RGBA mismatch (-want +got):\n%s", diff)
	}
}

// rleFrame encodes two 8-bit samples as a single literal run. The trailing
// no-op control byte keeps the fragment length even.
func rleFrame(a, b byte) []byte {
	frame := make([]byte, 64)
	frame[0] = 1
	frame[4] = 64
	return append(frame, 0x01, a, b, 0x80)
}

func TestReadFileEncapsulated(t *testing.T) {
	ds := imageDataset(t, "MONOCHROME2")
	obf := element.NewOtherByteFragment(tag.PixelData)
	obf.AddFragment(buffer.NewMemory(rleFrame(5, 6)))
	obf.AddFragment(buffer.NewMemory(rleFrame(7, 8)))
	if err := ds.Add(obf); err != nil {
		t.Fatalf("Add(PixelData): %v", err)
	}

	e, err := ReadFile(writeFile(t, ds, transfer.RLELossless))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if ts, _ := e.String(TagTransferSyntaxUID); ts != codec.RLELossless {
		t.Errorf("transfer syntax = %q", ts)
	}

	pd, ok := e.PixelData()
	if !ok {
		t.Fatal("pixel data missing")
	}
	if !pd.Encapsulated() {
		t.Fatal("pixel data should be encapsulated")
	}
	if diff := cmp.Diff([][]byte{rleFrame(5, 6), rleFrame(7, 8)}, pd.Fragments); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	// The writer stores one offset per fragment
	if diff := cmp.Diff([]uint32{0, 68}, pd.OffsetTable); diff != "" {
		t.Errorf("offset table mismatch (-want +got):\n%s", diff)
	}

	for i, want := range [][]uint8{{5, 6}, {7, 8}} {
		f, err := NewDecoder().DecodeFrame(e, i)
		if err != nil {
			t.Fatalf("DecodeFrame(%d) failed: %v", i, err)
		}
		if diff := cmp.Diff(want, f.Samples.U8); diff != "" {
			t.Errorf("frame %d samples mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.dcm")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
