package h5store

import (
	"errors"
	"fmt"
	"os"

	magnify "github.com/bnlif/magnify_go/pkg"
	"gonum.org/v1/hdf5"
)

const tableChunk = 1024

func openFile(fname string, mode magnify.FileMode) (*hdf5.File, error) {
	var f *hdf5.File
	var err error
	switch mode {
	case magnify.ModeCreate:
		f, err = hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	case magnify.ModeUpdate:
		if _, statErr := os.Stat(fname); errors.Is(statErr, os.ErrNotExist) {
			f, err = hdf5.CreateFile(fname, hdf5.F_ACC_EXCL)
		} else {
			f, err = hdf5.OpenFile(fname, hdf5.F_ACC_RDWR)
		}
	default:
		err = fmt.Errorf("unknown file mode %v", mode)
	}
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

// openOrCreateGroup opens name under file, creating it when missing.
func openOrCreateGroup(file *hdf5.File, name string) (*hdf5.Group, error) {
	if file.LinkExists(name) {
		g, err := file.OpenGroup(name)
		if err != nil {
			return nil, &ErrCreateGroup{GroupName: name, Err: err}
		}
		return g, nil
	}
	g, err := file.CreateGroup(name)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: name, Err: err}
	}
	return g, nil
}

func datasetCreateProps(chunks []uint, compression int) (*hdf5.PropList, error) {
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	if err := plist.SetChunk(chunks); err != nil {
		plist.Close()
		return nil, err
	}
	if compression > 0 {
		if err := plist.SetDeflate(compression); err != nil {
			plist.Close()
			return nil, err
		}
	}
	return plist, nil
}

// createArray creates a fixed-size chunked array. Chunks span whole rows.
func createArray(group *hdf5.Group, name string, dtype *hdf5.Datatype, dims []uint, compression int) (*hdf5.Dataset, error) {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer space.Close()

	chunks := make([]uint, len(dims))
	copy(chunks, dims)
	if len(dims) == 2 && dims[0] > 50 {
		chunks[0] = 50
	}
	plist, err := datasetCreateProps(chunks, compression)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	dset, err := group.CreateDatasetWith(name, dtype, space, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// openArray opens an existing array and checks it has the expected shape.
func openArray(group *hdf5.Group, name string, dims []uint) (*hdf5.Dataset, error) {
	dset, err := group.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	space := dset.Space()
	defer space.Close()
	current, _, err := space.SimpleExtentDims()
	if err != nil {
		dset.Close()
		return nil, err
	}
	if !sameDims(current, dims) {
		dset.Close()
		return nil, &magnify.ErrDimension{
			What:     fmt.Sprintf("existing dataset %s", name),
			Expected: fmt.Sprintf("%v", dims),
			Actual:   fmt.Sprintf("%v", current),
		}
	}
	return dset, nil
}

func sameDims(a []uint, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// createTable creates an extendable 1D table of datatype records.
func createTable(group *hdf5.Group, name string, datatype interface{}, compression int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := datasetCreateProps([]uint{tableChunk}, compression)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeTable resizes the table to exactly len(*data) records and writes them.
func writeTable[T any](dataset *hdf5.Dataset, data *[]T) error {
	length := uint(len(*data))
	if err := dataset.Resize([]uint{length}); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	memSpace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return err
	}
	defer memSpace.Close()

	fileSpace := dataset.Space()
	defer fileSpace.Close()
	if err := fileSpace.SelectHyperslab([]uint{0}, nil, []uint{length}, nil); err != nil {
		return err
	}

	return dataset.WriteSubset(data, memSpace, fileSpace)
}

func readTable[T any](dataset *hdf5.Dataset) ([]T, error) {
	space := dataset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("table rank %d, expected 1", len(dims))
	}
	// The slice MUST be allocated to the full size before reading
	records := make([]T, dims[0])
	if dims[0] == 0 {
		return records, nil
	}
	if err := dataset.Read(&records); err != nil {
		return nil, err
	}
	return records, nil
}
