package services

import (
	"bytes"
	"regexp"
)

func (s *ServiceTestSuite) TestLocalStorageRejectsTraversal() {
	path, err := s.store.localPath("../../etc/passwd")
	s.Require().NoError(err)
	s.Contains(path, s.cfg.Storage.LocalDir)

	_, err = s.store.localPath("")
	s.Error(err)
}

func (s *ServiceTestSuite) TestLocalStorageRoundTrip() {
	data := []byte("hello")
	key := objectKey("tests", "clip.MOV")
	s.Regexp(regexp.MustCompile(`^tests/\d{8}_[0-9a-f-]{36}\.mov$`), key)

	s.Require().NoError(s.store.Put(s.ctx, key, bytes.NewReader(data), int64(len(data)), "video/quicktime"))
	location, err := s.store.Locate(s.ctx, key, 0)
	s.Require().NoError(err)
	s.NotEmpty(location.LocalPath)

	s.Require().NoError(s.store.Delete(s.ctx, key))
	_, err = s.store.Locate(s.ctx, key, 0)
	s.Error(err)
	s.NoError(s.store.Delete(s.ctx, key), "deleting a missing object is not an error")
}
