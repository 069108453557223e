package uploads

import (
	"errors"
	"fmt"
	"github.com/gabriel-vasile/mimetype"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 允許的圖片類型及對應副檔名
var fileTypeMap = []struct {
	mime string
	ext  string
}{
	{"image/png", "png"},
	{"image/jpeg", "jpeg"},
	{"image/jpg", "jpg"},
	{"image/gif", "gif"},
}

var allowExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

var ErrInvalidImage = errors.New("only image files are allowed")

// 儲存於磁碟上的上傳檔案
type File struct {
	Name string
	Path string
}

// 商品圖片的存放位置
type Store struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewStore(dir string) (*Store, error) {
	//檢查uploads資料夾是否存在，如不存在則創建
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{
		Dir:       dir,
		URLPrefix: "/public/uploads/",
		now:       time.Now,
	}, nil
}

func isValidImageExtension(filename string) bool {
	fileExt := strings.ToLower(filepath.Ext(filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

// 以內容判斷圖片類型
func detectType(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	for _, fileType := range fileTypeMap {
		if mtype.Is(fileType.mime) {
			return fileType.ext, nil
		}
	}
	return "", ErrInvalidImage
}

// 檔名空白換成-並加上時間戳
func (s *Store) makeUniqueFileName(filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s-%d.%s", base, s.now().UnixNano(), ext)
}

// 儲存上傳的圖片
func (s *Store) Save(header *multipart.FileHeader) (*File, error) {
	if !isValidImageExtension(header.Filename) {
		return nil, ErrInvalidImage
	}
	ext, err := detectType(header)
	if err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := s.makeUniqueFileName(header.Filename, ext)
	path := filepath.Join(s.Dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}

	_, err = dst.ReadFrom(src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write %s: %w", name, err)
	}

	return &File{Name: name, Path: path}, nil
}

// 刪除已儲存的檔案，檔案不存在時不算錯誤
func (s *Store) Remove(file *File) error {
	if file == nil {
		return nil
	}
	err := os.Remove(file.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// 圖片的公開網址，baseURL為 scheme://host
func (s *Store) URL(baseURL string, file *File) string {
	return strings.TrimRight(baseURL, "/") + s.URLPrefix + url.PathEscape(file.Name)
}

// 由公開網址找回儲存的檔案，不是本Store的網址時回傳nil
func (s *Store) FromURL(imageURL string) *File {
	_, escaped, found := strings.Cut(imageURL, s.URLPrefix)
	if !found {
		return nil
	}
	name, err := url.PathUnescape(escaped)
	if err != nil || name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil
	}
	return &File{Name: name, Path: filepath.Join(s.Dir, name)}
}
