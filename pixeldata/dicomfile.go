package pixeldata

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
)

// MaxObjectSize is the largest element value ReadFile loads into memory
const MaxObjectSize = 512 * 1024 * 1024

// ReadFile parses a DICOM Part 10 file and copies the attributes the
// decoder needs into an Elements map.
func ReadFile(path string) (*Elements, error) {
	res, err := parser.ParseFile(path,
		parser.WithReadOption(parser.ReadAll),
		parser.WithLargeObjectSize(MaxObjectSize),
	)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	ds := res.Dataset
	e := NewElements()
	e.SetString(TagTransferSyntaxUID, res.TransferSyntax.UID().UID())

	e.SetUint16(TagRows, uint16(ds.TryGetUInt16(tag.Rows, 0)))
	e.SetUint16(TagColumns, uint16(ds.TryGetUInt16(tag.Columns, 0)))
	e.SetUint16(TagSamplesPerPixel, uint16(ds.TryGetUInt16(tag.SamplesPerPixel, 0)))
	e.SetUint16(TagBitsAllocated, uint16(ds.TryGetUInt16(tag.BitsAllocated, 0)))
	e.SetUint16(TagBitsStored, uint16(ds.TryGetUInt16(tag.BitsStored, 0)))
	e.SetUint16(TagPixelRepresentation, uint16(ds.TryGetUInt16(tag.PixelRepresentation, 0)))
	e.SetUint16(TagPlanarConfiguration, uint16(ds.TryGetUInt16(tag.PlanarConfiguration, 0)))

	if s, ok := ds.GetString(tag.PhotometricInterpretation); ok {
		e.SetString(TagPhotometricInterpretation, s)
	}
	if s, ok := ds.GetString(tag.NumberOfFrames); ok {
		e.SetString(TagNumberOfFrames, s)
	}
	if s, ok := ds.GetString(tag.RescaleSlope); ok {
		e.SetString(TagRescaleSlope, s)
	}
	if s, ok := ds.GetString(tag.RescaleIntercept); ok {
		e.SetString(TagRescaleIntercept, s)
	}

	setDescriptor := func(t Tag, v any, ok bool) {
		if !ok {
			return
		}
		if values, ok := descriptorValues(v); ok {
			e.SetUint16(t, values...)
		}
	}
	red, ok := ds.Get(tag.RedPaletteColorLookupTableDescriptor)
	setDescriptor(TagRedPaletteDescriptor, red, ok)
	green, ok := ds.Get(tag.GreenPaletteColorLookupTableDescriptor)
	setDescriptor(TagGreenPaletteDescriptor, green, ok)
	blue, ok := ds.Get(tag.BluePaletteColorLookupTableDescriptor)
	setDescriptor(TagBluePaletteDescriptor, blue, ok)

	setBytes := func(t Tag, v any, ok bool) {
		if !ok {
			return
		}
		if b, ok := elementBytes(v); ok {
			e.SetBytes(t, b)
		}
	}
	red, ok = ds.Get(tag.RedPaletteColorLookupTableData)
	setBytes(TagRedPaletteData, red, ok)
	green, ok = ds.Get(tag.GreenPaletteColorLookupTableData)
	setBytes(TagGreenPaletteData, green, ok)
	blue, ok = ds.Get(tag.BluePaletteColorLookupTableData)
	setBytes(TagBluePaletteData, blue, ok)

	if v, ok := ds.Get(tag.PixelData); ok {
		pd, err := pixelDataElement(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		e.SetPixelData(pd)
	}
	return e, nil
}

// descriptorValues reads a palette descriptor. The VR is US or SS depending
// on the first mapped value; SS values keep their bit pattern.
func descriptorValues(v any) ([]uint16, bool) {
	switch el := v.(type) {
	case *element.UnsignedShort:
		values, err := el.GetValues()
		return values, err == nil
	case *element.SignedShort:
		values, err := el.GetValues()
		if err != nil {
			return nil, false
		}
		out := make([]uint16, len(values))
		for i, x := range values {
			out[i] = uint16(x)
		}
		return out, true
	case *element.String:
		return parseValues(el.GetString()), true
	}
	return nil, false
}

func elementBytes(v any) ([]byte, bool) {
	switch el := v.(type) {
	case *element.OtherByte:
		return el.GetData(), true
	case *element.OtherWord:
		return el.GetData(), true
	case *element.Unknown:
		return el.GetData(), true
	}
	return nil, false
}

func pixelDataElement(v any) (*PixelDataElement, error) {
	if b, ok := elementBytes(v); ok {
		return &PixelDataElement{Native: b}, nil
	}

	var seq *element.FragmentSequence
	switch el := v.(type) {
	case *element.OtherByteFragment:
		seq = el.FragmentSequence
	case *element.OtherWordFragment:
		seq = el.FragmentSequence
	default:
		return nil, fmt.Errorf("unsupported pixel data element %T", v)
	}

	pd := &PixelDataElement{OffsetTable: seq.OffsetTable()}
	for _, f := range seq.Fragments() {
		pd.Fragments = append(pd.Fragments, f.Data())
	}
	return pd, nil
}
