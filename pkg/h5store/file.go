package h5store

import (
	"errors"
	"fmt"

	magnify "github.com/bnlif/magnify_go/pkg"
	"gonum.org/v1/hdf5"
)

const (
	valuesName  = "values"
	metaName    = "meta"
	regionsName = "regions"
)

// meta layout: rank, x axis, y axis, storage, kind, plane, scale
const (
	metaRank = iota
	metaXBins
	metaXLow
	metaXHigh
	metaYBins
	metaYLow
	metaYHigh
	metaStorage
	metaKind
	metaPlane
	metaScale
	metaLen
)

type badChannelHDF5 struct {
	Channel   int32 `hdf5:"channel"`
	Plane     int32 `hdf5:"plane"`
	StartTick int32 `hdf5:"start_tick"`
	EndTick   int32 `hdf5:"end_tick"`
}

// File is a grid store backed by one HDF5 file. Every tag is a group holding
// either a values/meta pair or a bad-channel regions table.
type File struct {
	file        *hdf5.File
	Filename    string
	Mode        magnify.FileMode
	Compression int
	readOnly    bool
}

// Open opens an existing file for reading.
func Open(fname string) (*File, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return &File{file: f, Filename: fname, readOnly: true}, nil
}

// Create opens fname for writing. ModeCreate truncates, ModeUpdate keeps the
// existing tags and creates the file when missing.
func Create(fname string, mode magnify.FileMode, compression int) (*File, error) {
	info(fmt.Sprintf("Opening %s in %s mode", fname, mode))
	f, err := openFile(fname, mode)
	if err != nil {
		return nil, err
	}
	return &File{file: f, Filename: fname, Mode: mode, Compression: compression}, nil
}

func info(message string) {
	if magnify.GetConfiguration().Verbosity > 0 {
		magnify.GetLogger().Info(message, "h5store")
	}
}

// Tags lists the top-level tags of the file.
func (f *File) Tags() ([]string, error) {
	n, err := f.file.NumObjects()
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, n)
	for i := uint(0); i < n; i++ {
		name, err := f.file.ObjectNameByIndex(i)
		if err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, nil
}

func (f *File) openTag(tag string, dataset string) (*hdf5.Group, error) {
	if !f.file.LinkExists(tag) {
		return nil, &magnify.ErrMissingTag{Tag: tag}
	}
	group, err := f.file.OpenGroup(tag)
	if err != nil {
		return nil, &magnify.ErrMissingTag{Tag: tag, Err: err}
	}
	if !group.LinkExists(dataset) {
		group.Close()
		return nil, &magnify.ErrMissingTag{Tag: tag, Err: fmt.Errorf("no %s dataset", dataset)}
	}
	return group, nil
}

func readMeta(group *hdf5.Group) ([]float64, error) {
	dset, err := group.OpenDataset(metaName)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	meta, err := readTable[float64](dset)
	if err != nil {
		return nil, err
	}
	if len(meta) != metaLen {
		return nil, &magnify.ErrDimension{
			What:     "meta",
			Expected: fmt.Sprintf("%d entries", metaLen),
			Actual:   fmt.Sprintf("%d", len(meta)),
		}
	}
	return meta, nil
}

func axisFromMeta(meta []float64, bins int, low int, high int) magnify.Axis {
	return magnify.Axis{
		Bins: int(meta[bins]),
		Low:  meta[low],
		High: meta[high],
	}
}

func (f *File) Grid(tag string) (*magnify.Grid, error) {
	group, err := f.openTag(tag, valuesName)
	if err != nil {
		return nil, err
	}
	defer group.Close()

	meta, err := readMeta(group)
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", tag, metaName, err)
	}
	if meta[metaRank] != 2 {
		return nil, &magnify.ErrDimension{What: "rank of " + tag, Expected: "2", Actual: fmt.Sprintf("%g", meta[metaRank])}
	}
	spec := magnify.GridSpec{
		Name:     tag,
		Plane:    magnify.Plane(meta[metaPlane]),
		Kind:     magnify.DatasetKind(meta[metaKind]),
		Storage:  magnify.Storage(meta[metaStorage]),
		Channels: axisFromMeta(meta, metaXBins, metaXLow, metaXHigh),
		Ticks:    axisFromMeta(meta, metaYBins, metaYLow, metaYHigh),
		Scale:    meta[metaScale],
	}
	samples, err := readValues(group, spec.Storage)
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", tag, valuesName, err)
	}
	return magnify.NewGridFromSamples(spec, samples)
}

func (f *File) Vector(tag string) (*magnify.Vector, error) {
	group, err := f.openTag(tag, valuesName)
	if err != nil {
		return nil, err
	}
	defer group.Close()

	meta, err := readMeta(group)
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", tag, metaName, err)
	}
	if meta[metaRank] != 1 {
		return nil, &magnify.ErrDimension{What: "rank of " + tag, Expected: "1", Actual: fmt.Sprintf("%g", meta[metaRank])}
	}
	storage := magnify.Storage(meta[metaStorage])
	values, err := readValues(group, storage)
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", tag, valuesName, err)
	}
	return magnify.NewVectorFromValues(tag, axisFromMeta(meta, metaXBins, metaXLow, metaXHigh), storage, values)
}

func (f *File) WriteGrid(g *magnify.Grid) error {
	meta := make([]float64, metaLen)
	meta[metaRank] = 2
	meta[metaXBins], meta[metaXLow], meta[metaXHigh] = float64(g.Channels.Bins), g.Channels.Low, g.Channels.High
	meta[metaYBins], meta[metaYLow], meta[metaYHigh] = float64(g.Ticks.Bins), g.Ticks.Low, g.Ticks.High
	meta[metaStorage] = float64(g.Storage)
	meta[metaKind] = float64(g.Kind)
	meta[metaPlane] = float64(g.Plane)
	meta[metaScale] = g.Scale()

	dims := []uint{uint(g.NChannels()), uint(g.NTicks())}
	if err := f.writeEntry(g.Name, g.Storage, dims, g.Samples(), meta); err != nil {
		return err
	}
	info(fmt.Sprintf("%s: wrote %s grid %d x %d", f.Filename, g.Name, g.NChannels(), g.NTicks()))
	return nil
}

func (f *File) WriteVector(v *magnify.Vector) error {
	meta := make([]float64, metaLen)
	meta[metaRank] = 1
	meta[metaXBins], meta[metaXLow], meta[metaXHigh] = float64(v.Axis.Bins), v.Axis.Low, v.Axis.High
	meta[metaStorage] = float64(v.Storage)
	meta[metaScale] = 1

	if err := f.writeEntry(v.Name, v.Storage, []uint{uint(v.Len())}, v.Values(), meta); err != nil {
		return err
	}
	info(fmt.Sprintf("%s: wrote %s vector %d", f.Filename, v.Name, v.Len()))
	return nil
}

func (f *File) writeEntry(tag string, storage magnify.Storage, dims []uint, values []float64, meta []float64) error {
	if f.readOnly {
		return &ErrReadOnly{Filename: f.Filename}
	}
	group, err := openOrCreateGroup(f.file, tag)
	if err != nil {
		return err
	}
	defer group.Close()

	metaSet, err := f.metaDataset(group, tag, storage)
	if err != nil {
		return err
	}
	defer metaSet.Close()

	var valueSet *hdf5.Dataset
	if group.LinkExists(valuesName) {
		valueSet, err = openArray(group, valuesName, dims)
	} else {
		valueSet, err = createArray(group, valuesName, storageType(storage), dims, f.Compression)
	}
	if err != nil {
		return fmt.Errorf("error writing %s: %w", tag, err)
	}
	defer valueSet.Close()

	if err := writeValues(valueSet, storage, values); err != nil {
		return fmt.Errorf("error writing %s/%s: %w", tag, valuesName, err)
	}
	if err := metaSet.Write(&meta); err != nil {
		return fmt.Errorf("error writing %s/%s: %w", tag, metaName, err)
	}
	return nil
}

// metaDataset opens or creates the meta dataset of a group. An existing
// entry must have been written with the same storage.
func (f *File) metaDataset(group *hdf5.Group, tag string, storage magnify.Storage) (*hdf5.Dataset, error) {
	if group.LinkExists(metaName) {
		meta, err := readMeta(group)
		if err != nil {
			return nil, fmt.Errorf("error reading %s/%s: %w", tag, metaName, err)
		}
		if existing := magnify.Storage(meta[metaStorage]); existing != storage {
			return nil, &magnify.ErrInvalid{
				What:   "update of " + tag,
				Reason: fmt.Sprintf("stored as %s, writing %s", existing, storage),
			}
		}
		return group.OpenDataset(metaName)
	}

	space, err := hdf5.CreateSimpleDataspace([]uint{metaLen}, nil)
	if err != nil {
		return nil, &ErrCreateTable{TableName: metaName, Err: err}
	}
	defer space.Close()
	dset, err := group.CreateDataset(metaName, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return nil, &ErrCreateTable{TableName: metaName, Err: err}
	}
	return dset, nil
}

func storageType(storage magnify.Storage) *hdf5.Datatype {
	switch storage {
	case magnify.Float32:
		return hdf5.T_NATIVE_FLOAT
	case magnify.Int32:
		return hdf5.T_NATIVE_INT32
	default:
		return hdf5.T_NATIVE_DOUBLE
	}
}

func toBuffer[T int32 | float32](values []float64) []T {
	buf := make([]T, len(values))
	for i, v := range values {
		buf[i] = T(v)
	}
	return buf
}

func fromBuffer[T int32 | float32 | float64](buf []T) []float64 {
	values := make([]float64, len(buf))
	for i, v := range buf {
		values[i] = float64(v)
	}
	return values
}

func writeValues(dset *hdf5.Dataset, storage magnify.Storage, values []float64) error {
	switch storage {
	case magnify.Float32:
		buf := toBuffer[float32](values)
		return dset.Write(&buf)
	case magnify.Int32:
		buf := toBuffer[int32](values)
		return dset.Write(&buf)
	default:
		return dset.Write(&values)
	}
}

// readValues reads the values dataset flattened in row-major order.
func readValues(group *hdf5.Group, storage magnify.Storage) ([]float64, error) {
	dset, err := group.OpenDataset(valuesName)
	if err != nil {
		return nil, err
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	n := space.SimpleExtentNPoints()

	switch storage {
	case magnify.Float32:
		buf := make([]float32, n)
		if err := dset.Read(&buf); err != nil {
			return nil, err
		}
		return fromBuffer(buf), nil
	case magnify.Int32:
		buf := make([]int32, n)
		if err := dset.Read(&buf); err != nil {
			return nil, err
		}
		return fromBuffer(buf), nil
	default:
		buf := make([]float64, n)
		if err := dset.Read(&buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
}

// BadChannels reads the regions table stored under tag.
func (f *File) BadChannels(tag string) ([]magnify.BadChannelRegion, error) {
	group, err := f.openTag(tag, regionsName)
	if err != nil {
		return nil, err
	}
	defer group.Close()

	dset, err := group.OpenDataset(regionsName)
	if err != nil {
		return nil, fmt.Errorf("error opening %s/%s: %w", tag, regionsName, err)
	}
	defer dset.Close()

	records, err := readTable[badChannelHDF5](dset)
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", tag, regionsName, err)
	}
	regions := make([]magnify.BadChannelRegion, len(records))
	for i, r := range records {
		regions[i] = magnify.BadChannelRegion{
			Channel:   int(r.Channel),
			Plane:     magnify.Plane(r.Plane),
			StartTick: int(r.StartTick),
			EndTick:   int(r.EndTick),
		}
	}
	return regions, nil
}

// WriteBadChannels replaces the regions table stored under tag.
func (f *File) WriteBadChannels(tag string, regions []magnify.BadChannelRegion) error {
	if f.readOnly {
		return &ErrReadOnly{Filename: f.Filename}
	}
	group, err := openOrCreateGroup(f.file, tag)
	if err != nil {
		return err
	}
	defer group.Close()

	var dset *hdf5.Dataset
	if group.LinkExists(regionsName) {
		dset, err = group.OpenDataset(regionsName)
	} else {
		dset, err = createTable(group, regionsName, badChannelHDF5{}, f.Compression)
	}
	if err != nil {
		return fmt.Errorf("error writing %s: %w", tag, err)
	}
	defer dset.Close()

	// The slice MUST be allocated at creation for HDF5
	records := make([]badChannelHDF5, len(regions))
	for i, r := range regions {
		records[i] = badChannelHDF5{
			Channel:   int32(r.Channel),
			Plane:     int32(r.Plane),
			StartTick: int32(r.StartTick),
			EndTick:   int32(r.EndTick),
		}
	}
	if err := writeTable(dset, &records); err != nil {
		return fmt.Errorf("error writing %s/%s: %w", tag, regionsName, err)
	}
	info(fmt.Sprintf("%s: wrote %d bad channel regions to %s", f.Filename, len(regions), tag))
	return nil
}

func (f *File) Close() error {
	var flushErr error
	if !f.readOnly {
		flushErr = f.file.Flush(hdf5.F_SCOPE_GLOBAL)
	}
	return errors.Join(flushErr, f.file.Close())
}
